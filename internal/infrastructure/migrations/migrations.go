// Package migrations applies the embedded schema with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// UpPostgres opens a short-lived database/sql handle through the pgx stdlib
// driver and applies every pending postgres migration.
func UpPostgres(dsn string, logger logrus.FieldLogger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrations.UpPostgres: %w", err)
	}
	return up("postgres", driver, logger)
}

// UpSQLite applies every pending sqlite migration on db. db stays open.
func UpSQLite(db *sql.DB, logger logrus.FieldLogger) error {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrations.UpSQLite: %w", err)
	}
	return up("sqlite", driver, logger)
}

func up(dialect string, driver database.Driver, logger logrus.FieldLogger) error {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return err
	}
	// m.Close is not called: it would close the caller's *sql.DB.
	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return err
	}
	logger.WithField("dialect", dialect).Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.WithField("dialect", dialect).Info("no migrations to run")
		return nil
	}
	return err
}
