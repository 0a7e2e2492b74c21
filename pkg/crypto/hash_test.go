package crypto

import (
	"strings"
	"testing"
)

func TestHashVerifySecret(t *testing.T) {
	hash, err := HashSecret("CorrectHorse1")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("expected PHC argon2id format, got %q", hash)
	}

	if !VerifySecret(hash, "CorrectHorse1") {
		t.Error("expected verification to succeed for original secret")
	}
	if VerifySecret(hash, "CorrectHorse2") {
		t.Error("expected verification to fail for different secret")
	}
	if VerifySecret(hash, "") {
		t.Error("expected verification to fail for empty candidate")
	}
}

func TestHashSecretUnique(t *testing.T) {
	// Random salt makes hashes differ even for identical input
	h1, err := HashSecret("same")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	h2, err := HashSecret("same")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	if h1 == h2 {
		t.Error("expected distinct hashes for same input")
	}
	if !VerifySecret(h1, "same") || !VerifySecret(h2, "same") {
		t.Error("both hashes should verify the original input")
	}
}

func TestVerifySecretMalformed(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$",
		"$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$!!!",
	}
	for _, h := range malformed {
		if VerifySecret(h, "anything") {
			t.Errorf("expected verification to fail for malformed hash %q", h)
		}
	}
}
