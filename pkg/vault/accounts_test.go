package vault

import (
	"errors"
	"testing"
	"time"

	"passvault/pkg/audit"
)

func TestAddAccountDefaults(t *testing.T) {
	v, _ := setupTestVault(t)

	acc, err := v.AddAccount(NewAccount{
		ServiceName: "github",
		Username:    "alice",
		Password:    "s3cret",
	})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	if acc.ID == "" {
		t.Error("ID is empty")
	}
	if acc.Priority != PriorityLow {
		t.Errorf("Priority = %q, want %q", acc.Priority, PriorityLow)
	}
	if acc.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", acc.Category, DefaultCategory)
	}
}

func TestAddAccountValidation(t *testing.T) {
	v, _ := setupTestVault(t)

	if _, err := v.AddAccount(NewAccount{Password: "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing service error = %v, want ErrValidation", err)
	}
	if _, err := v.AddAccount(NewAccount{ServiceName: "github"}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing password error = %v, want ErrValidation", err)
	}
}

func TestAddAccountUnknownPriority(t *testing.T) {
	v, _ := setupTestVault(t)

	acc, err := v.AddAccount(NewAccount{
		ServiceName: "github",
		Password:    "s3cret",
		Priority:    Priority("Critical"),
	})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if acc.Priority != PriorityLow {
		t.Errorf("Priority = %q, want fallback %q", acc.Priority, PriorityLow)
	}
}

func TestListAccountsDecryptsSecrets(t *testing.T) {
	v, _ := setupTestVault(t)

	if _, err := v.AddAccount(NewAccount{ServiceName: "github", Password: "s3cret"}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("len(accounts) = %d, want 1", len(accounts))
	}
	if accounts[0].Password != "s3cret" {
		t.Errorf("Password = %q, want %q", accounts[0].Password, "s3cret")
	}
}

func TestListAccountsOrder(t *testing.T) {
	v, clock := setupTestVault(t)

	// Insert out of priority order with distinct creation times so the
	// newest-first tie-break inside a rank is observable.
	for _, in := range []NewAccount{
		{ServiceName: "low", Password: "p", Priority: PriorityLow},
		{ServiceName: "high-old", Password: "p", Priority: PriorityHigh},
		{ServiceName: "medium", Password: "p", Priority: PriorityMedium},
		{ServiceName: "high-new", Password: "p", Priority: PriorityHigh},
	} {
		if _, err := v.AddAccount(in); err != nil {
			t.Fatalf("AddAccount(%s) error = %v", in.ServiceName, err)
		}
		clock.Advance(time.Second)
	}

	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}

	want := []string{"high-new", "high-old", "medium", "low"}
	if len(accounts) != len(want) {
		t.Fatalf("len(accounts) = %d, want %d", len(accounts), len(want))
	}
	for i, name := range want {
		if accounts[i].ServiceName != name {
			t.Errorf("accounts[%d] = %s, want %s", i, accounts[i].ServiceName, name)
		}
	}
}

func TestListAccountsCorruptRecord(t *testing.T) {
	v, _ := setupTestVault(t)

	good, err := v.AddAccount(NewAccount{ServiceName: "good", Password: "s3cret"})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	bad, err := v.AddAccount(NewAccount{ServiceName: "bad", Password: "s3cret"})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	// Corrupt one record's ciphertext directly in the store.
	if _, err := v.db.Exec(
		"UPDATE accounts SET encrypted_password = ? WHERE id = ?",
		[]byte("garbage ciphertext bytes"), bad.ID,
	); err != nil {
		t.Fatalf("corrupting record: %v", err)
	}

	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(accounts))
	}
	for _, acc := range accounts {
		switch acc.ID {
		case good.ID:
			if acc.Password != "s3cret" {
				t.Errorf("good record Password = %q, want %q", acc.Password, "s3cret")
			}
		case bad.ID:
			if acc.Password != CorruptMarker {
				t.Errorf("corrupt record Password = %q, want %q", acc.Password, CorruptMarker)
			}
		}
	}
}

func TestUpdateAccount(t *testing.T) {
	v, _ := setupTestVault(t)

	acc, err := v.AddAccount(NewAccount{ServiceName: "github", Username: "alice", Password: "old"})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	acc.Password = "new"
	acc.Priority = PriorityHigh
	if err := v.UpdateAccount(*acc); err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}

	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if accounts[0].Password != "new" {
		t.Errorf("Password = %q, want %q", accounts[0].Password, "new")
	}
	if accounts[0].Priority != PriorityHigh {
		t.Errorf("Priority = %q, want %q", accounts[0].Priority, PriorityHigh)
	}
}

func TestUpdateAccountNotFound(t *testing.T) {
	v, _ := setupTestVault(t)

	err := v.UpdateAccount(Account{
		ID:          "does-not-exist",
		ServiceName: "github",
		Password:    "s3cret",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateAccount() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	v, _ := setupTestVault(t)

	acc, err := v.AddAccount(NewAccount{ServiceName: "github", Password: "s3cret"})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	if err := v.DeleteAccount(acc.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	accounts, err := v.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("len(accounts) = %d after delete, want 0", len(accounts))
	}

	// Deleting a missing id is a no-op.
	if err := v.DeleteAccount("does-not-exist"); err != nil {
		t.Errorf("DeleteAccount(missing) error = %v", err)
	}
}

func TestAccountOperationsAudited(t *testing.T) {
	v, _ := setupTestVault(t)

	acc, err := v.AddAccount(NewAccount{ServiceName: "github", Password: "s3cret"})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if err := v.UpdateAccount(*acc); err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	if err := v.DeleteAccount(acc.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	entries, err := v.Audit().List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		seen[e.Action] = true
	}
	for _, action := range []string{
		audit.ActionAccountAdded,
		audit.ActionAccountUpdated,
		audit.ActionAccountDeleted,
	} {
		if !seen[action] {
			t.Errorf("audit log missing action %q", action)
		}
	}
}
