package main

import (
	"database/sql"
	"errors"
	"flag"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/kvstore"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/utils"
)

func main() {
	var driver string
	var dsn string
	var command string

	flag.StringVar(&driver, "driver", "", "Storage driver to migrate (sqlite, postgres); defaults to STORAGE_DRIVER")
	flag.StringVar(&dsn, "dsn", "", "Database path or URL; defaults to STORAGE_DSN")
	flag.StringVar(&command, "cmd", "up", "Migration command (up, down, version, force)")
	flag.Parse()

	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	if driver == "" {
		driver = cfg.StorageDriver
	}
	if dsn == "" {
		dsn = cfg.StorageDSN
	}

	log.Info().Str("driver", driver).Str("dsn", maskDatabaseURL(dsn)).Msg("🔄 Running storage migrations")

	db, err := openDB(driver, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to open database")
	}
	defer db.Close()

	// Create migrate instance
	m, err := kvstore.NewMigrator(driver, db)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create migrate instance")
	}

	// Execute command
	switch command {
	case "up":
		log.Info().Msg("⬆️  Running UP migrations...")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("❌ Migration UP failed")
		}
		log.Info().Msg("✅ Migrations UP completed!")

	case "down":
		log.Info().Msg("⬇️  Running DOWN migrations...")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("❌ Migration DOWN failed")
		}
		log.Info().Msg("✅ Migrations DOWN completed!")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("❌ Failed to get version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("📌 Current version")

	case "force":
		if flag.NArg() < 1 {
			log.Fatal().Msg("❌ Please provide version number for force command")
		}
		forceVersion, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Version must be a number")
		}
		if err := m.Force(forceVersion); err != nil {
			log.Fatal().Err(err).Msg("❌ Force failed")
		}
		log.Info().Int("version", forceVersion).Msg("✅ Forced version")

	default:
		log.Fatal().Str("cmd", command).Msg("❌ Unknown command (use: up, down, version, force)")
	}
}

// openDB only serves the SQL drivers; file, redis and memory storage have no schema
func openDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case kvstore.DriverSQLite:
		if dsn == "" {
			dsn = "./data/clarity.db"
		}
		return sql.Open("sqlite", dsn)
	case kvstore.DriverPostgres:
		db, err := database.NewDB(dsn)
		if err != nil {
			return nil, err
		}
		return db.DB, nil
	default:
		return nil, errors.New("storage driver " + driver + " has no schema to migrate")
	}
}

// maskDatabaseURL hides password in database URL for logging
func maskDatabaseURL(url string) string {
	if len(url) < 20 {
		return "***"
	}
	return url[:20] + "***" + url[len(url)-10:]
}
