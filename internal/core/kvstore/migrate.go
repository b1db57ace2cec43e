package kvstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator returns a golang-migrate instance over the embedded schema for
// driver (sqlite or postgres) bound to an open database.
func NewMigrator(driver string, db *sql.DB) (*migrate.Migrate, error) {
	var (
		target database.Driver
		err    error
	)
	switch driver {
	case DriverSQLite:
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		target, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open migration target: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, driver, target)
}

// MigrateUp applies every pending migration
func MigrateUp(driver string, db *sql.DB) error {
	m, err := NewMigrator(driver, db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	version, _, _ := m.Version()
	log.Debug().Str("driver", driver).Uint("version", version).Msg("🔄 Storage schema up to date")
	return nil
}
