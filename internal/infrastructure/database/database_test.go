package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gearbook/internal/infrastructure/config"
)

func TestOpen(t *testing.T) {
	cfg := config.SQLiteStoreConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5000,
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != cfg.Path {
		t.Errorf("Path() = %q, want %q", db.Path(), cfg.Path)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(config.SQLiteStoreConfig{})
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SQLiteStoreConfig
		want []string
	}{
		{
			name: "base",
			cfg:  config.SQLiteStoreConfig{Path: "/tmp/x.db"},
			want: []string{"_foreign_keys=on"},
		},
		{
			name: "wal and busy timeout",
			cfg:  config.SQLiteStoreConfig{Path: "/tmp/x.db", WALMode: true, BusyTimeout: 3000},
			want: []string{"_journal_mode=WAL", "_busy_timeout=3000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildDSN(tt.cfg)
			for _, substr := range tt.want {
				if !strings.Contains(dsn, substr) {
					t.Errorf("dsn %q missing %q", dsn, substr)
				}
			}
		})
	}
}
