package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Schema version constants
const (
	// SchemaVersion1 is the initial schema: accounts, config, audit_logs.
	SchemaVersion1 = 1
	// CurrentSchemaVersion is the declared target schema version.
	CurrentSchemaVersion = SchemaVersion1
)

// Migrate brings the database schema up to CurrentSchemaVersion. It is run
// once at startup and replaces any ad-hoc table patching: each version is an
// explicit, ordered step recorded in the schema_version table.
func Migrate(db *sql.DB) error {
	version, err := getSchemaVersion(db)
	if err != nil {
		return err
	}

	if version > CurrentSchemaVersion {
		return fmt.Errorf("store: database schema version %d is newer than supported %d",
			version, CurrentSchemaVersion)
	}

	if version < SchemaVersion1 {
		if err := migrateToV1(db); err != nil {
			return fmt.Errorf("store: migration to v1 failed: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the schema version recorded in the database, or 0
// for a fresh database.
func getSchemaVersion(db *sql.DB) (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: failed to check schema_version table: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: failed to get schema version: %w", err)
	}

	return version, nil
}

// setSchemaVersion records a completed migration step.
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			migrated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// migrateToV1 creates the initial schema.
func migrateToV1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			service_name TEXT NOT NULL,
			username TEXT,
			encrypted_password BLOB NOT NULL,
			iv BLOB NOT NULL,
			priority TEXT NOT NULL DEFAULT 'Low',
			category TEXT NOT NULL DEFAULT 'Other',
			notes TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS config (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create config table: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			details TEXT,
			timestamp TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	if err := setSchemaVersion(tx, SchemaVersion1); err != nil {
		return err
	}

	return tx.Commit()
}
