package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var ErrUnsupportedDriver = errors.New("sources: unsupported database driver")

// Opener yields a database handle for one operation. The returned release func must be called
// once the operation is done.
type Opener interface {
	Open(ctx context.Context) (*bun.DB, func() error, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (*bun.DB, func() error, error)

func (f OpenerFunc) Open(ctx context.Context) (*bun.DB, func() error, error) {
	return f(ctx)
}

// DSNOpener opens a fresh connection for every call and closes it on release. There is no pooling
// across calls.
type DSNOpener struct {
	Driver string
	DSN    string
}

func (o DSNOpener) Open(ctx context.Context) (*bun.DB, func() error, error) {
	driver, dialect, err := resolveDriver(o.Driver)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(o.DSN) == "" {
		return nil, nil, fmt.Errorf("sources: database dsn is required")
	}

	sqlDB, err := sql.Open(driver, o.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	db := bun.NewDB(sqlDB, dialect)
	return db, db.Close, nil
}

// OpenDB opens a pooled, long-lived handle for components that keep their connection, such as
// the database version store.
func OpenDB(ctx context.Context, driver, dsn string) (*bun.DB, error) {
	name, dialect, err := resolveDriver(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sources: database dsn is required")
	}
	sqlDB, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if name == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

// SharedOpener hands out an existing handle and leaves it open on release.
type SharedOpener struct {
	DB *bun.DB
}

func (o SharedOpener) Open(context.Context) (*bun.DB, func() error, error) {
	if o.DB == nil {
		return nil, nil, fmt.Errorf("sources: shared database not configured")
	}
	return o.DB, func() error { return nil }, nil
}

// Dialect returns the bun dialect for a driver name.
func Dialect(driver string) (schema.Dialect, error) {
	_, dialect, err := resolveDriver(driver)
	return dialect, err
}

// NormalizeDriver maps driver aliases to the registered database/sql driver name.
func NormalizeDriver(driver string) (string, error) {
	name, _, err := resolveDriver(driver)
	return name, err
}

func resolveDriver(driver string) (string, schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite":
		return DriverSQLite, sqlitedialect.New(), nil
	case DriverPostgres, "postgresql", "pg":
		return DriverPostgres, pgdialect.New(), nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
