package models

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var db *sql.DB

// Initialize opens the SQLite database and applies migrations.
func Initialize(dataDirectory string) error {
	return InitializeWithMigration(dataDirectory, true)
}

// InitializeWithMigration opens the SQLite database, optionally applying migrations.
// CLI subcommands that only touch existing data skip migration.
func InitializeWithMigration(dataDirectory string, migrate bool) error {
	databasePath := filepath.Join(dataDirectory, "storeit.db")

	dsn := "file:" + databasePath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	var err error
	db, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if migrate {
		if err := runMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Debugf("Database ready at %s", databasePath)
	return nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func runMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			avatar TEXT NOT NULL DEFAULT '',
			refresh_token_version INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			parent_id TEXT,
			owner_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_folders_owner_parent ON folders(owner_id, parent_id)`,
		`CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			full_name TEXT NOT NULL,
			blob_path TEXT NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			size_bytes INTEGER NOT NULL,
			folder_id TEXT,
			owner_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_owner_folder ON files(owner_id, folder_id)`,
		`CREATE TABLE IF NOT EXISTS app_keys (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PingDB reports whether the database connection is alive.
func PingDB() error {
	if db == nil {
		return sql.ErrConnDone
	}
	return db.Ping()
}

// SetDB swaps the package database handle, returning the previous one.
// Tests use it to install a sqlmock connection.
func SetDB(newDB *sql.DB) *sql.DB {
	old := db
	db = newDB
	return old
}

// nullableID maps the empty string to NULL so root-scoped rows store
// parent_id / folder_id as NULL rather than ''.
func nullableID(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
