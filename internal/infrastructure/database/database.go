package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gearbook/internal/infrastructure/config"
)

// DB wraps a sql.DB with gearbook-specific lifecycle management.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if necessary) the SQLite database at the configured
// path and applies the connection pragmas.
//
// The parent directory is created if it does not exist. The connection pool
// is restricted to a single open connection because SQLite allows only one
// writer at a time; funnelling every statement through one connection avoids
// SQLITE_BUSY errors under concurrent load.
func Open(cfg config.SQLiteStoreConfig) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database: path is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("database: create directory: %w", err)
	}

	dsn := buildDSN(cfg)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &DB{DB: db, path: cfg.Path}, nil
}

// buildDSN constructs the SQLite connection string from configuration.
func buildDSN(cfg config.SQLiteStoreConfig) string {
	dsn := cfg.Path + "?_foreign_keys=on"
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL"
	}
	if cfg.BusyTimeout > 0 {
		dsn += fmt.Sprintf("&_busy_timeout=%d", cfg.BusyTimeout)
	}
	return dsn
}

// Path returns the filesystem path of the database file.
func (d *DB) Path() string {
	return d.path
}

// HealthCheck verifies the database connection is alive.
func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.PingContext(ctx); err != nil {
		return fmt.Errorf("database: health check: %w", err)
	}
	return nil
}
