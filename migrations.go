package sitecontent

import (
	"context"
	"embed"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecontent/internal/sources"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "data/sql/migrations"

// GetMigrationsFS returns the embedded migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// Migrate creates the page_content and content_versions tables when they do not exist.
func Migrate(ctx context.Context, db bun.IDB) error {
	return sources.ApplyMigrations(ctx, db, migrationsFS, migrationsDir)
}
