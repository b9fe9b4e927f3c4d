package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig extracts the backend settings from the application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         Type(app.DataBackend),
		SQLiteDBPath: app.SQLiteDBPath,
		PostgresURL:  app.PostgresURL,
		SeedDir:      app.SeedDir,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q: must be one of %v", c.Type, Types())
	}
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case Postgres:
		if c.PostgresURL == "" {
			return errors.New("Postgres URL is required for postgres backend")
		}
	}
	return nil
}
