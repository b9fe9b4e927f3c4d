package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/storage"
	"fintrack/internal/store/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config should fail")
	}
	_, err := FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil || !strings.Contains(err.Error(), "invalid backend type") {
		t.Fatalf("expected invalid type, got %v", err)
	}
	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	if err == nil || !strings.Contains(err.Error(), "Postgres URL is required") {
		t.Fatalf("expected missing url, got %v", err)
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory", SeedDir: "seeds"})
	if err != nil || cfg.Type != Memory || cfg.SeedDir != "seeds" {
		t.Fatalf("memory: %+v %v", cfg, err)
	}
}

func TestFactoryOpen(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	b, err := f.Open(ctx, Config{Type: Memory, SeedDir: t.TempDir()})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := b.(*memory.Store); !ok {
		t.Fatalf("memory backend type %T", b)
	}

	b, err = f.Open(ctx, Config{Type: SQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*storage.SQLiteRepository); !ok {
		t.Fatalf("sqlite backend type %T", b)
	}

	if _, err := f.Open(ctx, Config{Type: "bogus"}); err == nil {
		t.Fatal("unknown type should fail")
	}
}
