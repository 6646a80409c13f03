package sitecontent_test

import (
	"context"
	"testing"

	sitecontent "github.com/goliatone/go-sitecontent"
	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/sources"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/pkg/testsupport"
)

func TestEmbeddedMigrationsCreateTables(t *testing.T) {
	ctx := context.Background()
	db, err := testsupport.NewBunSQLiteDB(ctx)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sitecontent.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := sitecontent.Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}

	src := sources.NewStoreSource(sources.SharedOpener{DB: db})
	if err := src.Save(ctx, testsupport.Page("services", 1), content.English); err != nil {
		t.Fatalf("save page: %v", err)
	}
	if _, err := src.Get(ctx, "services", content.Spanish); err != nil {
		t.Fatalf("get page: %v", err)
	}

	svc := versions.NewService(versions.NewBunStore(db))
	if _, err := svc.SaveVersion(ctx, testsupport.Page("services", 1), "", ""); err != nil {
		t.Fatalf("save version: %v", err)
	}
	history, err := svc.GetHistory(ctx, "services")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Versions) != 1 {
		t.Fatalf("expected one stored version, got %d", len(history.Versions))
	}
}

func TestMigrationsFSListsFiles(t *testing.T) {
	entries, err := sitecontent.GetMigrationsFS().ReadDir("data/sql/migrations")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least two migrations, got %d", len(entries))
	}
}
