package di_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/admin"
	"github.com/goliatone/go-sitecontent/internal/di"
	"github.com/goliatone/go-sitecontent/internal/logging/gologger"
	"github.com/goliatone/go-sitecontent/internal/runtimeconfig"
	"github.com/goliatone/go-sitecontent/internal/sources"
	"github.com/goliatone/go-sitecontent/internal/versions"
	"github.com/goliatone/go-sitecontent/pkg/testsupport"
)

func fileConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	root := t.TempDir()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Versions.Dir = filepath.Join(root, "versions")
	cfg.Logging.Provider = "noop"
	if err := testsupport.WritePageFile(cfg.Content.Dir, "pages/home.json", testsupport.PageDocument("home", 1)); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return cfg
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = ""
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrContentDirRequired) {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}

func TestNewContainerSelectsFileSource(t *testing.T) {
	cfg := fileConfig(t)
	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if _, ok := container.Source().(*sources.FileSource); !ok {
		t.Fatalf("expected file source, got %T", container.Source())
	}
	if container.ContentService().SourceName() != container.Source().Name() {
		t.Fatalf("content service not bound to the selected source")
	}

	page, err := container.ContentService().Get(context.Background(), "home", content.Spanish)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if page.Meta.PageID != "home" {
		t.Fatalf("unexpected page: %+v", page.Meta)
	}
	if container.PageCache().Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", container.PageCache().Len())
	}
}

func TestDevelopmentBypassesCache(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Environment = runtimeconfig.EnvironmentDevelopment
	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if !container.ContentService().Development() || !container.PageCache().Bypassed() {
		t.Fatalf("expected development mode to bypass the cache")
	}
}

func TestSaveThroughContainerWritesFileHistory(t *testing.T) {
	cfg := fileConfig(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	container, err := di.NewContainer(cfg, di.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	ctx := context.Background()

	err = container.SaveFieldHandler().Execute(ctx, admin.SaveContentFieldCommand{
		PageID: "home",
		Field:  "hero.headline",
		Value:  "Hola de nuevo",
		Locale: "es",
		Author: "cli",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	history, err := versions.NewFileStore(cfg.Versions.Dir).Load(ctx, "home")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if history == nil || len(history.Versions) != 1 || history.CurrentVersion != 2 {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history.Versions[0].Content.Meta.LastUpdated != content.FormatTimestamp(now) {
		t.Fatalf("expected clock-driven lastUpdated, got %q", history.Versions[0].Content.Meta.LastUpdated)
	}
}

func TestRegisterRoutesServesContent(t *testing.T) {
	container, err := di.NewContainer(fileConfig(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	mux := http.NewServeMux()
	if err := container.RegisterRoutes(mux); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/content/home?locale=es", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestDatabaseSourceWithMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := testsupport.NewBunSQLiteDB(ctx)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrations := fstest.MapFS{
		"sql/0001_page_content.sql": &fstest.MapFile{Data: []byte(`
CREATE TABLE IF NOT EXISTS page_content (
    id UUID PRIMARY KEY,
    page_id TEXT NOT NULL,
    locale TEXT NOT NULL DEFAULT '',
    meta JSONB NOT NULL,
    seo JSONB NOT NULL,
    content JSONB NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)},
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.UseDatabase = true
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = "file::memory:"
	cfg.Versions.Backend = runtimeconfig.VersionsBackendMemory
	cfg.Logging.Provider = "noop"

	container, err := di.NewContainer(cfg, di.WithBunDB(db), di.WithMigrations(migrations, "sql"))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	store, ok := container.Source().(*sources.StoreSource)
	if !ok {
		t.Fatalf("expected store source, got %T", container.Source())
	}
	if _, ok := store.Opener().(sources.SharedOpener); !ok {
		t.Fatalf("expected injected handle to be shared, got %T", store.Opener())
	}

	if err := container.ContentService().Save(ctx, testsupport.Page("about", 1), content.English); err != nil {
		t.Fatalf("save: %v", err)
	}
	page, err := container.ContentService().Get(ctx, "about", content.Spanish)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if page.Meta.Version != 1 {
		t.Fatalf("expected version 1, got %d", page.Meta.Version)
	}
}

func TestStoreSourceOpensPerCallForEveryHistoryBackend(t *testing.T) {
	backends := []string{
		runtimeconfig.VersionsBackendMemory,
		runtimeconfig.VersionsBackendDatabase,
	}
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			cfg := runtimeconfig.DefaultConfig()
			cfg.Content.UseDatabase = true
			cfg.Database.Driver = "sqlite3"
			cfg.Database.DSN = filepath.Join(t.TempDir(), "site.db")
			cfg.Versions.Backend = backend
			cfg.Logging.Provider = "noop"

			migrations := os.DirFS(filepath.Join("..", "..", "data", "sql"))
			container, err := di.NewContainer(cfg, di.WithMigrations(migrations, "migrations"))
			if err != nil {
				t.Fatalf("NewContainer: %v", err)
			}
			t.Cleanup(func() { container.Close() })

			store, ok := container.Source().(*sources.StoreSource)
			if !ok {
				t.Fatalf("expected store source, got %T", container.Source())
			}
			if _, ok := store.Opener().(sources.DSNOpener); !ok {
				t.Fatalf("expected per-call DSN opener, got %T", store.Opener())
			}

			if err := container.ContentService().Save(ctx, testsupport.Page("about", 1), content.English); err != nil {
				t.Fatalf("save: %v", err)
			}
			result, err := container.Pipeline().Save(ctx, admin.SaveRequest{
				PageID: "about",
				Field:  "hero.headline",
				Value:  "Buenas",
				Locale: content.Spanish,
				Author: "editor",
			})
			if err != nil {
				t.Fatalf("pipeline save: %v", err)
			}
			if result.Page.Meta.Version != 2 {
				t.Fatalf("expected version 2, got %d", result.Page.Meta.Version)
			}
			history, err := container.VersionService().GetHistory(ctx, "about")
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if len(history.Versions) != 1 || history.Versions[0].Author != "editor" {
				t.Fatalf("unexpected history %+v", history.Versions)
			}
		})
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if logger := provider.GetLogger("site.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestOverridesWin(t *testing.T) {
	src := sources.NewMemorySource()
	src.Put("home", testsupport.PageDocument("home", 4))
	store := versions.NewMemoryStore()

	container, err := di.NewContainer(fileConfig(t), di.WithSource(src), di.WithVersionStore(store))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.Source() != src {
		t.Fatalf("expected injected source")
	}
	if _, err := container.Pipeline().Save(context.Background(), admin.SaveRequest{
		PageID: "home",
		Field:  "hero.headline",
		Value:  "Hi",
		Locale: content.English,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.Saves() != 1 {
		t.Fatalf("expected history written to injected store, got %d saves", store.Saves())
	}
}
