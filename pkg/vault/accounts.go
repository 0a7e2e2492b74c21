package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"passvault/pkg/audit"
	"passvault/pkg/crypto"
)

// NewAccount carries the fields for an account insertion. Zero-value
// Priority and Category fall back to Low and "Other".
type NewAccount struct {
	ServiceName string
	Username    string
	Password    string
	Priority    Priority
	Category    string
	Notes       string
}

// AddAccount encrypts the secret and persists a new record.
func (v *Vault) AddAccount(n NewAccount) (*Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.addAccount(n)
}

// addAccount is the lock-held implementation, shared with import.
func (v *Vault) addAccount(n NewAccount) (*Account, error) {
	if n.ServiceName == "" {
		return nil, fmt.Errorf("%w: service name is required", ErrValidation)
	}
	if n.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	priority := ParsePriority(string(n.Priority))
	category := n.Category
	if category == "" {
		category = DefaultCategory
	}

	nonce, ciphertext, err := crypto.Encrypt(v.key, []byte(n.Password))
	if err != nil {
		return nil, err
	}

	now := v.now().UTC()
	acc := &Account{
		ID:          uuid.NewString(),
		ServiceName: n.ServiceName,
		Username:    n.Username,
		Password:    n.Password,
		Priority:    priority,
		Category:    category,
		Notes:       n.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = v.db.Exec(`
		INSERT INTO accounts (id, service_name, username, encrypted_password, iv,
			priority, category, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acc.ID, acc.ServiceName, acc.Username, ciphertext, nonce,
		string(acc.Priority), acc.Category, acc.Notes,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("vault: failed to insert account: %w", err)
	}

	v.record(audit.ActionAccountAdded, fmt.Sprintf("%s (%s)", acc.ServiceName, acc.Category))
	return acc, nil
}

// UpdateAccount rewrites an existing record. The secret is re-encrypted
// unconditionally, even when unchanged; callers wanting change detection
// must diff before calling.
func (v *Vault) UpdateAccount(acc Account) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if acc.ServiceName == "" {
		return fmt.Errorf("%w: service name is required", ErrValidation)
	}
	if acc.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	category := acc.Category
	if category == "" {
		category = DefaultCategory
	}

	nonce, ciphertext, err := crypto.Encrypt(v.key, []byte(acc.Password))
	if err != nil {
		return err
	}

	result, err := v.db.Exec(`
		UPDATE accounts
		SET service_name = ?, username = ?, encrypted_password = ?, iv = ?,
			priority = ?, category = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		acc.ServiceName, acc.Username, ciphertext, nonce,
		string(ParsePriority(string(acc.Priority))), category, acc.Notes,
		v.now().UTC().Format(time.RFC3339Nano), acc.ID)
	if err != nil {
		return fmt.Errorf("vault: failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("vault: failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	v.record(audit.ActionAccountUpdated, fmt.Sprintf("%s updated", acc.ServiceName))
	return nil
}

// ListAccounts returns every account with its secret decrypted, ordered by
// priority rank and then creation time, newest first within a rank.
//
// A record that fails to decrypt does not abort the listing: its Password is
// replaced with CorruptMarker and the rest of the record returned intact.
func (v *Vault) ListAccounts() ([]Account, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.listAccounts()
}

// listAccounts is the lock-held implementation, shared with export.
func (v *Vault) listAccounts() ([]Account, error) {
	rows, err := v.db.Query(`
		SELECT id, service_name, username, encrypted_password, iv,
			priority, category, notes, created_at, updated_at
		FROM accounts
		ORDER BY
			CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 ELSE 3 END ASC,
			created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acc Account
		var username, notes sql.NullString
		var ciphertext, nonce []byte
		var priority, createdAt, updatedAt string

		if err := rows.Scan(&acc.ID, &acc.ServiceName, &username, &ciphertext, &nonce,
			&priority, &acc.Category, &notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("vault: failed to scan account row: %w", err)
		}
		acc.Username = username.String
		acc.Notes = notes.String
		acc.Priority = ParsePriority(priority)
		if acc.Category == "" {
			acc.Category = DefaultCategory
		}
		acc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		acc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		plaintext, err := crypto.Decrypt(v.key, ciphertext, nonce)
		if err != nil {
			// Corrupted record: surface a marker, keep the listing alive.
			v.log.Warn("account decrypt failed", "id", acc.ID, "service", acc.ServiceName, "error", err)
			acc.Password = CorruptMarker
		} else {
			acc.Password = string(plaintext)
		}

		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: error iterating accounts: %w", err)
	}

	return accounts, nil
}

// DeleteAccount removes a record. Deleting an id that does not exist is a
// no-op, not an error; the audit entry falls back to a generic label when
// the record vanished before the name lookup.
func (v *Vault) DeleteAccount(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var serviceName string
	label := "unknown"
	err := v.db.QueryRow("SELECT service_name FROM accounts WHERE id = ?", id).Scan(&serviceName)
	if err == nil {
		label = serviceName
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("vault: failed to look up account: %w", err)
	}

	if _, err := v.db.Exec("DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("vault: failed to delete account: %w", err)
	}

	v.record(audit.ActionAccountDeleted, fmt.Sprintf("deleted record: %s", label))
	return nil
}
