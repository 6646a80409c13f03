package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBCounter atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory sqlite database. Each call gets its own
// database so tests do not see each other's rows.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("file:sitecontent_%d?mode=memory&cache=shared", memoryDBCounter.Add(1))
	db, err := sql.Open("sqlite3", name)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewBunSQLiteDB wraps NewSQLiteMemoryDB in bun and creates a table for each model.
func NewBunSQLiteDB(ctx context.Context, models ...any) (*bun.DB, error) {
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return db, nil
}
