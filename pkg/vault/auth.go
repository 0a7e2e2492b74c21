package vault

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"passvault/pkg/audit"
	"passvault/pkg/crypto"
)

// Lockout parameters: three cumulative failures trigger a timed lock.
const (
	MaxLoginAttempts = 3
	LockoutDuration  = 30 * time.Second
)

// Passphrase policy: at least 8 characters with upper, lower, and digit.
var (
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasLower = regexp.MustCompile(`[a-z]`)
	hasDigit = regexp.MustCompile(`\d`)
)

// validatePassphrase enforces the fixed complexity rule.
func validatePassphrase(passphrase string) error {
	if len(passphrase) < 8 ||
		!hasUpper.MatchString(passphrase) ||
		!hasLower.MatchString(passphrase) ||
		!hasDigit.MatchString(passphrase) {
		return ErrWeakSecret
	}
	return nil
}

// normalizeAnswer canonicalizes a recovery answer for hashing and
// verification: Unicode NFC, trimmed, case-folded.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(answer)))
}

// IsConfigured reports whether a master passphrase hash is stored.
func (v *Vault) IsConfigured() (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	_, ok, err := v.getConfig(cfgMasterPassHash)
	return ok, err
}

// Setup stores the master passphrase and recovery credentials, replacing any
// prior configuration entirely. The attempt counter is reset and any active
// lock cleared.
func (v *Vault) Setup(passphrase, question, answer string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := validatePassphrase(passphrase); err != nil {
		return err
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: recovery question is required", ErrValidation)
	}
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: recovery answer is required", ErrValidation)
	}

	passHash, err := crypto.HashSecret(passphrase)
	if err != nil {
		return err
	}
	answerHash, err := crypto.HashSecret(normalizeAnswer(answer))
	if err != nil {
		return err
	}

	if err := v.setConfig(cfgMasterPassHash, passHash); err != nil {
		return err
	}
	if err := v.setConfig(cfgSecQuestion, question); err != nil {
		return err
	}
	if err := v.setConfig(cfgSecAnswerHash, answerHash); err != nil {
		return err
	}
	if err := v.setConfig(cfgLoginAttempts, "0"); err != nil {
		return err
	}
	if err := v.clearConfig(cfgLockUntil); err != nil {
		return err
	}

	v.record(audit.ActionSetup, "vault configured")
	return nil
}

// Login verifies the master passphrase.
//
// While a lock is active the call fails immediately with a LockedError
// carrying the remaining seconds and does not consume an attempt. An expired
// lock is cleared, resetting the counter, before verification proceeds. The
// third cumulative mismatch arms a 30-second lock.
func (v *Vault) Login(passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.login(passphrase, false)
}

// login is the lock-held implementation. suppressAudit elides the
// user-facing login events for internal re-verification (export).
func (v *Vault) login(passphrase string, suppressAudit bool) error {
	lockValue, hasLock, err := v.getConfig(cfgLockUntil)
	if err != nil {
		return err
	}
	if hasLock {
		lockUntil, parseErr := time.Parse(time.RFC3339, lockValue)
		if parseErr != nil {
			// Unreadable lock state: treat as expired rather than
			// locking the user out indefinitely.
			v.log.Warn("invalid lock_until value", "value", lockValue, "error", parseErr)
			lockUntil = time.Time{}
		}

		now := v.now()
		if now.Before(lockUntil) {
			remaining := int(math.Ceil(lockUntil.Sub(now).Seconds()))
			return &LockedError{RemainingSeconds: remaining}
		}

		// Lock expired: clear it and start a fresh attempt window.
		if err := v.clearConfig(cfgLockUntil); err != nil {
			return err
		}
		if err := v.setConfig(cfgLoginAttempts, "0"); err != nil {
			return err
		}
	}

	passHash, configured, err := v.getConfig(cfgMasterPassHash)
	if err != nil {
		return err
	}
	if !configured {
		return ErrNotConfigured
	}

	if crypto.VerifySecret(passHash, passphrase) {
		if err := v.setConfig(cfgLoginAttempts, "0"); err != nil {
			return err
		}
		if err := v.clearConfig(cfgLockUntil); err != nil {
			return err
		}
		if !suppressAudit {
			v.record(audit.ActionLoginSuccess, "vault opened")
		}
		return nil
	}

	attempts, err := v.incrementAttempts()
	if err != nil {
		return err
	}
	if !suppressAudit {
		v.record(audit.ActionLoginFailed, fmt.Sprintf("failed attempt %d", attempts))
	}

	if attempts >= MaxLoginAttempts {
		lockUntil := v.now().Add(LockoutDuration)
		if err := v.setConfig(cfgLockUntil, lockUntil.Format(time.RFC3339)); err != nil {
			return err
		}
		v.record(audit.ActionLockout, "brute-force protection engaged")
		return &LockedError{RemainingSeconds: int(LockoutDuration.Seconds())}
	}

	return ErrInvalidCredentials
}

// incrementAttempts bumps and persists the failed-attempt counter.
func (v *Vault) incrementAttempts() (int, error) {
	value, _, err := v.getConfig(cfgLoginAttempts)
	if err != nil {
		return 0, err
	}
	attempts, _ := strconv.Atoi(value)
	attempts++
	if err := v.setConfig(cfgLoginAttempts, strconv.Itoa(attempts)); err != nil {
		return 0, err
	}
	return attempts, nil
}

// RecoveryQuestion returns the stored recovery question, empty when none is
// configured. The question is not secret and is stored in plaintext.
func (v *Vault) RecoveryQuestion() (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	question, _, err := v.getConfig(cfgSecQuestion)
	return question, err
}

// ResetViaRecovery replaces the master passphrase after verifying the
// recovery answer. Answer comparison is case-insensitive and trimmed.
// Recovery failures are a separate channel: they never feed the login
// lockout counter.
func (v *Vault) ResetViaRecovery(answer, newPassphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := validatePassphrase(newPassphrase); err != nil {
		return err
	}

	answerHash, configured, err := v.getConfig(cfgSecAnswerHash)
	if err != nil {
		return err
	}
	if !configured {
		return ErrNotConfigured
	}

	if !crypto.VerifySecret(answerHash, normalizeAnswer(answer)) {
		v.record(audit.ActionRecoveryFailed, "wrong recovery answer")
		return ErrInvalidRecoveryAnswer
	}

	newHash, err := crypto.HashSecret(newPassphrase)
	if err != nil {
		return err
	}
	if err := v.setConfig(cfgMasterPassHash, newHash); err != nil {
		return err
	}
	if err := v.setConfig(cfgLoginAttempts, "0"); err != nil {
		return err
	}
	if err := v.clearConfig(cfgLockUntil); err != nil {
		return err
	}

	v.record(audit.ActionRecoveryReset, "passphrase reset via recovery question")
	return nil
}
