package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// Drivers selectable through Config.Driver
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database and applies pending migrations
func Open(cfg *Config) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.DSN == "" {
		return nil, errors.New("database DSN cannot be empty")
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch cfg.Driver {
	case DriverSQLite:
		// One connection serialises writers, which sqlite needs anyway, and
		// keeps in-memory databases alive for the life of the pool
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	case DriverPostgres:
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
