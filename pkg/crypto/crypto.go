// Package crypto provides the cryptographic primitives for passvault.
//
// This package implements AES-256-GCM authenticated encryption of stored
// secrets, scrypt derivation of the vault storage key, Argon2id hashing of
// the master passphrase and recovery answer, and SHA-1 fingerprinting for
// k-anonymity breach lookups.
//
// # Security Features
//
//   - AES-256-GCM authenticated encryption with a random 16-byte nonce
//   - scrypt storage-key derivation (N=32768, r=8, p=1)
//   - Argon2id passphrase hashing (64MB memory, 3 iterations)
//   - Constant-time hash verification
//   - Secure memory wiping for sensitive data
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Key and cipher parameters.
const (
	// KeyLength is the length of the storage key in bytes (256 bits).
	KeyLength = 32

	// NonceLength is the length of GCM nonces in bytes. Stored records carry
	// a 16-byte nonce, so GCM is configured for that size rather than the
	// 12-byte default.
	NonceLength = 16

	// scrypt parameters for storage-key derivation.
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// Fixed inputs for the storage key. Every vault derives the same key; the
// master passphrase gates access, not decryption. A hardened design would
// derive a per-installation key, or one bound to the master passphrase.
const (
	keyPhrase = "myvault_ultra_secure_key_2026"
	keySalt   = "salt_v4_final"
)

// Sentinel errors returned by crypto functions.
var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("crypto: invalid key length, must be 32 bytes")

	// ErrInvalidNonceLength indicates the nonce is not 16 bytes.
	ErrInvalidNonceLength = errors.New("crypto: invalid nonce length, must be 16 bytes")

	// ErrEmptyPlaintext indicates an attempt to encrypt an empty secret.
	ErrEmptyPlaintext = errors.New("crypto: plaintext must not be empty")

	// ErrDecryptFailed indicates decryption or authentication tag verification failed.
	ErrDecryptFailed = errors.New("crypto: decryption failed")

	// ErrCiphertextTooShort indicates the ciphertext is shorter than the GCM tag.
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
)

// DeriveVaultKey derives the 256-bit storage key using scrypt.
//
// The key is deterministic for the life of the vault. Callers derive it once
// at open time and carry it in the vault context; there is no rotation.
func DeriveVaultKey() ([]byte, error) {
	key, err := scrypt.Key([]byte(keyPhrase), []byte(keySalt), scryptN, scryptR, scryptP, KeyLength)
	if err != nil {
		return nil, fmt.Errorf("crypto: key derivation failed: %w", err)
	}
	return key, nil
}

// Encrypt encrypts plaintext using AES-256-GCM authenticated encryption.
//
// A cryptographically secure random 16-byte nonce is generated per call; the
// authentication tag is appended to the ciphertext. Empty plaintext is
// rejected with ErrEmptyPlaintext: an account with no secret is invalid
// input, not a vault entry with an empty value.
func Encrypt(key, plaintext []byte) (nonce []byte, ciphertext []byte, err error) {
	if len(key) != KeyLength {
		return nil, nil, ErrInvalidKeyLength
	}
	if len(plaintext) == 0 {
		return nil, nil, ErrEmptyPlaintext
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to generate nonce: %w", err)
	}

	ciphertext = gcm.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
//
// Tag verification failure (tampering, corruption, mismatched nonce) is
// reported as ErrDecryptFailed so callers can degrade gracefully instead of
// aborting a whole listing.
func Decrypt(key, ciphertext, nonce []byte) ([]byte, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// newGCM builds the AEAD configured for 16-byte nonces.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceLength)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Fingerprint computes the SHA-1 digest of a secret as 40 uppercase hex
// characters. It is used only for k-anonymity breach range queries, never
// for storage or authentication.
func Fingerprint(secret string) string {
	sum := sha1.Sum([]byte(secret))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// SecureWipe overwrites a byte slice with zeros in a way that prevents
// compiler optimization from removing the operation.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// runtime.KeepAlive ensures the write operations are not optimized away
	// by the compiler since b is still "in use" after the loop.
	runtime.KeepAlive(b)
}
