// Package store owns the sqlite storage handle for the vault.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// DBFileName is the vault database file name.
	DBFileName = "vault.db"

	// FileMode restricts the database to the owning user.
	FileMode = 0600

	// DirMode restricts the vault directory to the owning user.
	DirMode = 0700
)

// Open opens (creating if necessary) the vault database in dir and brings
// the schema up to date.
//
// The returned handle is limited to a single connection: all vault mutations
// serialize through it, which is sufficient for a single-user local tool and
// avoids interleaved partial writes.
func Open(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return nil, fmt.Errorf("store: failed to create vault directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := os.Chmod(dbPath, FileMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to set database permissions: %w", err)
	}

	return db, nil
}
