package database

import (
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// MigrationConfig controls the schema migration run at startup
type MigrationConfig struct {
	// FolderPath is the directory holding the .up.sql/.down.sql pairs.
	FolderPath string
	// TargetVersion pins the schema to a specific version; zero means latest.
	TargetVersion int
	// ForceVersion clears a dirty migration state before running; zero skips.
	ForceVersion int
}

// Migrate brings the schema to the configured version. A schema already at
// the target is not an error.
func Migrate(db *sqlx.DB, cfg MigrationConfig, logger ectologger.Logger) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.FolderPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("loading migrations from %s: %w", cfg.FolderPath, err)
	}

	if cfg.ForceVersion > 0 {
		logger.WithFields(map[string]any{"version": cfg.ForceVersion}).Warn("Forcing migration version")
		if err := m.Force(cfg.ForceVersion); err != nil {
			return fmt.Errorf("forcing migration version %d: %w", cfg.ForceVersion, err)
		}
	}

	if cfg.TargetVersion > 0 {
		err = m.Migrate(uint(cfg.TargetVersion))
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading migration version: %w", err)
	}
	logger.WithFields(map[string]any{"version": version, "dirty": dirty}).Info("Database schema is current")
	return nil
}
