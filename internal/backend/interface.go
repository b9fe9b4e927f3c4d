package backend

import (
	"context"

	"fintrack/internal/store"
)

type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	}
	return false
}

// Types lists the supported backends.
func Types() []Type { return []Type{Memory, SQLite, Postgres} }

// Config selects and configures a backend.
type Config struct {
	Type         Type
	SQLiteDBPath string
	PostgresURL  string
	SeedDir      string
}

// Factory opens a store.Backend for a configuration.
type Factory interface {
	Open(ctx context.Context, cfg Config) (store.Backend, error)
}
