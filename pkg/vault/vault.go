// Package vault implements the credential vault: master-passphrase lifecycle
// with brute-force lockout, encrypted account storage, and the plaintext
// import/export boundary. All account access is gated by authentication and
// every state-changing operation is recorded in the audit log.
package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"passvault/internal/store"
	"passvault/pkg/audit"
	"passvault/pkg/crypto"
)

// Priority orders accounts in listings: High before Medium before Low.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// DefaultCategory is applied when an account is stored without a category.
const DefaultCategory = "Other"

// CorruptMarker replaces the secret of a record that failed to decrypt
// during a listing. The record itself stays intact.
const CorruptMarker = "ERROR: undecryptable"

// ParsePriority maps a stored or imported string onto a Priority, defaulting
// to Low for anything unrecognized.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityLow
	}
}

// Account is a stored credential record. Password holds plaintext only in
// memory, on the way in or out of the cipher; at rest the store keeps
// ciphertext and nonce.
type Account struct {
	ID          string
	ServiceName string
	Username    string
	Password    string
	Priority    Priority
	Category    string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Config keys persisted in the config table.
const (
	cfgMasterPassHash = "master_pass_hash"
	cfgSecQuestion    = "sec_question"
	cfgSecAnswerHash  = "sec_answer_hash"
	cfgLoginAttempts  = "login_attempts"
	cfgLockUntil      = "lock_until"
)

// Vault is the explicitly constructed context holding the derived storage
// key, the single storage handle, and the audit logger. No package-level
// state: everything a component needs travels through this struct.
type Vault struct {
	db    *sql.DB
	key   []byte
	audit *audit.Logger
	log   *slog.Logger
	mu    sync.RWMutex

	// now is the clock used for lockout timing; tests substitute it.
	now func() time.Time
}

// Open opens the vault at dir, migrating the schema and deriving the
// storage key once for the process lifetime.
func Open(dir string, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := store.Open(dir)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveVaultKey()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Vault{
		db:    db,
		key:   key,
		audit: audit.NewLogger(db),
		log:   logger,
		now:   time.Now,
	}, nil
}

// Close releases the storage handle and wipes the derived key.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	crypto.SecureWipe(v.key)
	v.key = nil
	return v.db.Close()
}

// Audit exposes the audit logger for read-side callers (listing, export).
func (v *Vault) Audit() *audit.Logger {
	return v.audit
}

// record appends an audit entry, swallowing failures: auditing must never
// abort the operation it documents.
func (v *Vault) record(action, details string) {
	if err := v.audit.Record(action, details); err != nil {
		v.log.Warn("audit write failed", "action", action, "error", err)
	}
}

// getConfig reads a config value. The second return reports presence; a
// stored NULL counts as absent.
func (v *Vault) getConfig(key string) (string, bool, error) {
	var value sql.NullString
	err := v.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("vault: failed to read config %s: %w", key, err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// setConfig upserts a config value.
func (v *Vault) setConfig(key, value string) error {
	if _, err := v.db.Exec(
		"INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)", key, value,
	); err != nil {
		return fmt.Errorf("vault: failed to write config %s: %w", key, err)
	}
	return nil
}

// clearConfig nulls a config value while keeping the row.
func (v *Vault) clearConfig(key string) error {
	if _, err := v.db.Exec(
		"INSERT OR REPLACE INTO config (key, value) VALUES (?, NULL)", key,
	); err != nil {
		return fmt.Errorf("vault: failed to clear config %s: %w", key, err)
	}
	return nil
}
