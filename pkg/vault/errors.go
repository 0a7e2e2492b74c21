package vault

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers. The UI layer translates these into
// user-facing messages.
var (
	// ErrValidation indicates a required input field is missing or malformed.
	ErrValidation = errors.New("vault: invalid input")

	// ErrWeakSecret indicates a passphrase that fails the fixed complexity
	// policy: at least 8 characters with an upper-case letter, a lower-case
	// letter, and a digit.
	ErrWeakSecret = errors.New("vault: passphrase too weak")

	// ErrNotConfigured indicates no master passphrase has been set up.
	ErrNotConfigured = errors.New("vault: master passphrase not configured")

	// ErrInvalidCredentials indicates the master passphrase did not match.
	ErrInvalidCredentials = errors.New("vault: invalid master passphrase")

	// ErrInvalidRecoveryAnswer indicates the recovery answer did not match.
	ErrInvalidRecoveryAnswer = errors.New("vault: recovery answer does not match")

	// ErrNotFound indicates the account identifier does not exist.
	ErrNotFound = errors.New("vault: account not found")

	// ErrExport indicates the export boundary failed after authentication.
	ErrExport = errors.New("vault: export failed")

	// ErrImport wraps parse or I/O failures at the import boundary.
	ErrImport = errors.New("vault: import failed")
)

// LockedError is returned while the brute-force lockout is active. It
// carries the remaining wait as a typed field so callers never parse it out
// of the message.
type LockedError struct {
	RemainingSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("vault: locked out, retry in %d seconds", e.RemainingSeconds)
}

// IsLocked reports whether err is a lockout failure and returns it typed.
func IsLocked(err error) (*LockedError, bool) {
	var locked *LockedError
	if errors.As(err, &locked) {
		return locked, true
	}
	return nil, false
}
