package vault

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"passvault/pkg/audit"
	"passvault/pkg/crypto"
)

// transferRecord is the wire shape of the export/import boundary. Passwords
// are plaintext by design; the export is an auditable, deliberate risk.
type transferRecord struct {
	ID          string `json:"id"`
	ServiceName string `json:"service_name"`
	Username    string `json:"username"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
	Password    string `json:"password"`
}

// ExportAccounts re-authenticates the passphrase and writes the decrypted
// account list as a JSON array to path. Nothing is written when
// authentication fails or when any record cannot be decrypted: a backup
// holding a corruption marker instead of a secret would round-trip through
// import as a bogus password, so undecryptable records are fatal here even
// though listings degrade per record.
func (v *Vault) ExportAccounts(path, passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Internal re-verification: suppressed so it does not appear as a
	// user-facing login event.
	if err := v.login(passphrase, true); err != nil {
		return err
	}

	accounts, err := v.listAccounts()
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		if acc.Password == CorruptMarker {
			return fmt.Errorf("%w: account %s (%s) is undecryptable: %w",
				ErrExport, acc.ServiceName, acc.ID, crypto.ErrDecryptFailed)
		}
	}

	records := make([]transferRecord, 0, len(accounts))
	for _, acc := range accounts {
		records = append(records, transferRecord{
			ID:          acc.ID,
			ServiceName: acc.ServiceName,
			Username:    acc.Username,
			Priority:    string(acc.Priority),
			Category:    acc.Category,
			Notes:       acc.Notes,
			Password:    acc.Password,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}

	v.record(audit.ActionExport, "all accounts exported unencrypted")
	return nil
}

// ImportAccounts parses a JSON export file and inserts the entries that do
// not collide with an existing (service name, username) pair. Identifiers in
// the file are ignored; inserts get fresh ones.
//
// Imports are not transactional: a failure partway through aborts the
// remaining entries but leaves completed insertions in place. The returned
// count covers what was actually applied.
func (v *Vault) ImportAccounts(path string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrImport, err)
	}

	var records []transferRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrImport, err)
	}

	count := 0
	for _, rec := range records {
		exists, err := v.accountExists(rec.ServiceName, rec.Username)
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrImport, err)
		}
		if exists {
			continue
		}

		if _, err := v.addAccount(NewAccount{
			ServiceName: rec.ServiceName,
			Username:    rec.Username,
			Password:    rec.Password,
			Priority:    ParsePriority(rec.Priority),
			Category:    rec.Category,
			Notes:       rec.Notes,
		}); err != nil {
			return count, fmt.Errorf("%w: %v", ErrImport, err)
		}
		count++
	}

	v.record(audit.ActionImport, fmt.Sprintf("%d new accounts imported", count))
	return count, nil
}

// accountExists checks the import dedup key: service name plus username.
func (v *Vault) accountExists(serviceName, username string) (bool, error) {
	var id string
	err := v.db.QueryRow(
		"SELECT id FROM accounts WHERE service_name = ? AND username = ?",
		serviceName, username,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
