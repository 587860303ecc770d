package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/workoutbot/internal/store"
)

// DriverName maps a storage backend onto the registered sql driver
func DriverName(backend string) (string, error) {
	switch backend {
	case store.BackendSQLite:
		return "sqlite3", nil
	case store.BackendPostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported sql backend %q", backend)
}

// Connect opens the database for the given backend and creates the schema
func Connect(backend, dsn string) (*sqlx.DB, error) {
	driver, err := DriverName(backend)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite3" {
		// Create data directory if it doesn't exist
		if path := sqlitePath(dsn); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// sqlitePath extracts the file path from a sqlite dsn, or "" for in-memory databases
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	// One row per user; the record column holds the user's JSON document
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workout_users (
			user_id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			record TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create workout_users table: %v", err)
	}

	return nil
}
