package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for master-passphrase and recovery-answer hashing.
const (
	// Argon2Memory is the memory cost in KiB (64MB).
	Argon2Memory = 64 * 1024

	// Argon2Time is the number of iterations.
	Argon2Time = 3

	// Argon2Threads is the degree of parallelism.
	Argon2Threads = 1

	// Argon2SaltLength is the salt length in bytes.
	Argon2SaltLength = 16

	// Argon2HashLength is the derived hash length in bytes.
	Argon2HashLength = 32
)

// HashSecret computes an Argon2id hash of a secret in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<base64 salt>$<base64 hash>
//
// The hash is one-way; comparison goes through VerifySecret only.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, Argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypto: failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2HashLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, Argon2Memory, Argon2Time, Argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
	return encoded, nil
}

// VerifySecret reports whether candidate matches the given PHC-format hash.
//
// Comparison is constant time. A malformed or unsupported hash yields false,
// never an error: auth callers treat any internal failure as a mismatch.
func VerifySecret(encoded, candidate string) bool {
	salt, hash, time, memory, threads, ok := decodeHash(encoded)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(candidate), salt, time, memory, threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}

// decodeHash parses a PHC-format argon2id hash string.
func decodeHash(encoded string) (salt, hash []byte, time, memory uint32, threads uint8, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return nil, nil, 0, 0, 0, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, 0, 0, 0, false
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, hash, time, memory, threads, true
}
