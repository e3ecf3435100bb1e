package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create accounts table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id BIGINT PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL DEFAULT '',
			is_host BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create events table; owner_id is nullable for records that predate
	// ownership enforcement
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY,
			name VARCHAR(120) NOT NULL,
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at TIMESTAMPTZ,
			location VARCHAR(160) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			host_label VARCHAR(300) NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			owner_id BIGINT REFERENCES accounts(id),
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create favorites table (account <-> event relation)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			account_id BIGINT NOT NULL REFERENCES accounts(id),
			event_id BIGINT NOT NULL REFERENCES events(id),
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (account_id, event_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for the common listing paths
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at)",
		"CREATE INDEX IF NOT EXISTS idx_events_owner_id ON events(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_favorites_event_id ON favorites(event_id)",
	}

	for _, idx := range indexes {
		if _, err = db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
