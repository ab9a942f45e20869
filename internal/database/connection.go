package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/matthieukhl/ordersight/internal/config"
)

type DB struct {
	*sql.DB
	driver string
}

// Driver reports which SQL driver backs this store (sqlite3 or mysql).
func (db *DB) Driver() string {
	return db.driver
}

// Open connects to an existing store without touching its contents.
func Open(cfg *config.StoreConfig) (*DB, error) {
	db, err := sql.Open(cfg.Driver, dataSourceName(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// Rebuild discards any pre-existing store and creates an empty schema. For
// the sqlite backend the store file is deleted outright; for mysql the four
// tables are dropped. Either way the result is a from-scratch store.
func Rebuild(cfg *config.StoreConfig) (*DB, error) {
	if cfg.Driver == DriverSQLite && cfg.Path != ":memory:" {
		if err := os.Remove(cfg.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to delete existing store: %w", err)
		}
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverMySQL {
		if err := db.dropTables(); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := db.CreateSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// HealthCheck performs a simple health check on the store.
func (db *DB) HealthCheck() error {
	return db.Ping()
}

func dataSourceName(cfg *config.StoreConfig) string {
	if cfg.Driver == DriverMySQL {
		return cfg.DSN
	}
	return cfg.Path
}
