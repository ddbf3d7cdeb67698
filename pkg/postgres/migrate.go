package postgres

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// Migrate applies all pending migrations from sourceURL (e.g. "file://migrations")
// and logs the resulting schema version.
func Migrate(dsn, sourceURL string, logger *slog.Logger) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: run migrations up: %w", err)
		}
		logger.Debug("schema up to date")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("schema has no migrations applied", "source", sourceURL)
	case err != nil:
		return fmt.Errorf("postgres: read schema version: %w", err)
	case dirty:
		return fmt.Errorf("postgres: schema version %d is dirty", version)
	default:
		logger.Info("schema migrated", "version", version)
	}

	return nil
}
