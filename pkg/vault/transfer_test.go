package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"passvault/pkg/crypto"
)

func TestExportAccounts(t *testing.T) {
	v, _ := setupTestVault(t)

	if _, err := v.AddAccount(NewAccount{
		ServiceName: "github",
		Username:    "alice",
		Password:    "s3cret",
		Priority:    PriorityHigh,
	}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := v.ExportAccounts(path, "Correct1Pass"); err != nil {
		t.Fatalf("ExportAccounts() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var records []transferRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.ServiceName != "github" || rec.Username != "alice" || rec.Password != "s3cret" {
		t.Errorf("record = %+v, want github/alice/s3cret", rec)
	}
	if rec.Priority != string(PriorityHigh) {
		t.Errorf("Priority = %q, want %q", rec.Priority, PriorityHigh)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("export permissions = %o, want 0600", perm)
	}
}

func TestExportAccountsWrongPassphrase(t *testing.T) {
	v, _ := setupTestVault(t)

	path := filepath.Join(t.TempDir(), "export.json")
	err := v.ExportAccounts(path, "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ExportAccounts() error = %v, want ErrInvalidCredentials", err)
	}

	// Nothing may be written on a failed re-authentication.
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("export file exists after failed auth, stat err = %v", err)
	}
}

func TestExportAccountsUndecryptableRecord(t *testing.T) {
	v, _ := setupTestVault(t)

	if _, err := v.AddAccount(NewAccount{
		ServiceName: "good", Username: "alice", Password: "s3cret",
	}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	bad, err := v.AddAccount(NewAccount{
		ServiceName: "bad", Username: "bob", Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if _, err := v.db.Exec(
		"UPDATE accounts SET encrypted_password = ? WHERE id = ?",
		[]byte("garbage ciphertext bytes"), bad.ID,
	); err != nil {
		t.Fatalf("corrupting record: %v", err)
	}

	// A listing degrades per record, but an export must not write a
	// corruption marker as a plaintext password.
	path := filepath.Join(t.TempDir(), "export.json")
	err = v.ExportAccounts(path, "Correct1Pass")
	if !errors.Is(err, ErrExport) {
		t.Fatalf("ExportAccounts() error = %v, want ErrExport", err)
	}
	if !errors.Is(err, crypto.ErrDecryptFailed) {
		t.Errorf("ExportAccounts() error = %v, want wrapped ErrDecryptFailed", err)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("ExportAccounts() error = %q, want affected record named", err)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("export file exists despite undecryptable record, stat err = %v", err)
	}
}

func TestImportAccounts(t *testing.T) {
	v, _ := setupTestVault(t)

	path := filepath.Join(t.TempDir(), "import.json")
	payload := `[
		{"id": "ignored", "service_name": "github", "username": "alice", "password": "s3cret", "priority": "High", "category": "Work", "notes": "n"},
		{"service_name": "mail", "username": "alice", "password": "other"}
	]`
	if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
		t.Fatalf("writing import file: %v", err)
	}

	count, err := v.ImportAccounts(path)
	if err != nil {
		t.Fatalf("ImportAccounts() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(accounts))
	}
	// Imported ids are freshly generated, never taken from the file.
	for _, acc := range accounts {
		if acc.ID == "ignored" || acc.ID == "" {
			t.Errorf("imported account kept file id %q", acc.ID)
		}
	}
	// Zero-value fields fall back to the insertion defaults.
	for _, acc := range accounts {
		if acc.ServiceName == "mail" {
			if acc.Priority != PriorityLow {
				t.Errorf("mail Priority = %q, want %q", acc.Priority, PriorityLow)
			}
			if acc.Category != DefaultCategory {
				t.Errorf("mail Category = %q, want %q", acc.Category, DefaultCategory)
			}
		}
	}
}

func TestImportAccountsDeduplicates(t *testing.T) {
	v, _ := setupTestVault(t)

	if _, err := v.AddAccount(NewAccount{
		ServiceName: "github", Username: "alice", Password: "existing",
	}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "import.json")
	payload := `[
		{"service_name": "github", "username": "alice", "password": "colliding"},
		{"service_name": "github", "username": "bob", "password": "fresh"}
	]`
	if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
		t.Fatalf("writing import file: %v", err)
	}

	count, err := v.ImportAccounts(path)
	if err != nil {
		t.Fatalf("ImportAccounts() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(accounts))
	}
	for _, acc := range accounts {
		if acc.Username == "alice" && acc.Password != "existing" {
			t.Errorf("colliding import overwrote secret: %q", acc.Password)
		}
	}
}

func TestImportAccountsMalformedFile(t *testing.T) {
	v, _ := setupTestVault(t)

	path := filepath.Join(t.TempDir(), "import.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("writing import file: %v", err)
	}

	count, err := v.ImportAccounts(path)
	if !errors.Is(err, ErrImport) {
		t.Errorf("ImportAccounts() error = %v, want ErrImport", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestImportAccountsMissingFile(t *testing.T) {
	v, _ := setupTestVault(t)

	_, err := v.ImportAccounts(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrImport) {
		t.Errorf("ImportAccounts() error = %v, want ErrImport", err)
	}
}

func TestImportAccountsPartialFailure(t *testing.T) {
	v, _ := setupTestVault(t)

	path := filepath.Join(t.TempDir(), "import.json")
	// The second record has no password and fails validation; the first
	// insertion stays applied.
	payload := `[
		{"service_name": "github", "username": "alice", "password": "s3cret"},
		{"service_name": "mail", "username": "bob"}
	]`
	if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
		t.Fatalf("writing import file: %v", err)
	}

	count, err := v.ImportAccounts(path)
	if !errors.Is(err, ErrImport) {
		t.Fatalf("ImportAccounts() error = %v, want ErrImport", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	accounts, listErr := v.ListAccounts()
	if listErr != nil {
		t.Fatalf("ListAccounts() error = %v", listErr)
	}
	if len(accounts) != 1 {
		t.Errorf("len(accounts) = %d, want 1", len(accounts))
	}
}
