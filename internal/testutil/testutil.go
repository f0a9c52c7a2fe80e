package testutil

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/infrastructure/migrations"
	"github.com/rcmp123/marketplace/internal/infrastructure/sqlite"
)

// OpenInMemoryDB opens a named in-memory SQLite database with the real schema applied.
// The handle is closed through t.Cleanup.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_").Replace(t.Name())
	d, err := sqlite.Open(context.Background(), "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := migrations.UpSQLite(d, QuietLogger()); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}

// OpenStore wraps OpenInMemoryDB in a sqlite.Store.
func OpenStore(t *testing.T) *sqlite.Store {
	t.Helper()
	return sqlite.NewStore(OpenInMemoryDB(t))
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
