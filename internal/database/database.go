package database

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// InitDB initializes the database and ensures the schema is up to date.
// With an empty primaryURL the database is a local SQLite file at dbPath;
// otherwise it is a remote Turso/libSQL database.
func InitDB(dbPath string, primaryURL string, authToken string) (*sql.DB, error) {
	if primaryURL == "" {
		log.Info("Initializing local SQLite database", "path", dbPath)
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open local database: %w", err)
		}
		if dbPath == ":memory:" {
			// Every connection to :memory: is a separate database.
			db.SetMaxOpenConns(1)
		}
		if err = createTables(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables for local db: %w", err)
		}
		return db, nil
	}

	log.Info("Initializing Turso database", "url", primaryURL)
	db, err := sql.Open("libsql", primaryURL+"?authToken="+authToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", primaryURL, err)
	}
	if err = createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables for remote db: %w", err)
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	createSnapshotsTable := `
	CREATE TABLE IF NOT EXISTS tournament_snapshots (
		id TEXT PRIMARY KEY,
		current_round INTEGER NOT NULL DEFAULT 0,
		finished INTEGER NOT NULL DEFAULT 0,
		champion_id TEXT,
		snapshot BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);`

	if _, err := db.Exec(createSnapshotsTable); err != nil {
		return fmt.Errorf("failed to create tournament_snapshots table: %w", err)
	}
	if _, err := db.Exec(createMetricsTable); err != nil {
		return fmt.Errorf("failed to create metrics table: %w", err)
	}
	log.Info("Database initialized successfully")
	return nil
}
