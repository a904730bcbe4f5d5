package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/udhago/udhago-backend/pkg/config"
)

// RunMigrations applies all pending schema migrations from the configured
// migrations directory. A no-op when the schema is already current.
func RunMigrations(cfg *config.DatabaseConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
