package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (or creates) a SQLite database at path and applies connection pragmas.
// Schema is applied separately by the migrations package.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "rcmp123.db"
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	// One writer at a time; also keeps a shared-cache in-memory db alive
	// for as long as the handle is.
	d.SetMaxOpenConns(1)
	if err := d.PingContext(ctx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}
	// journal_mode is not supported for in-memory databases.
	_, _ = d.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if _, err := d.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("sqlite.Open: busy_timeout: %w", err)
	}
	return d, nil
}
