package auth

import "testing"

func TestHashAndVerify(t *testing.T) {
	h := NewPasswordHasher()

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatalf("hash equals plaintext")
	}

	if !h.Verify("correct horse battery staple", hash) {
		t.Fatalf("correct password rejected")
	}
	if h.Verify("wrong password", hash) {
		t.Fatalf("wrong password accepted")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewPasswordHasher()

	a, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password are identical")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher()

	for _, bad := range []string{"", "not-a-bcrypt-hash", "$2a$10$tooshort"} {
		if h.Verify("anything", bad) {
			t.Fatalf("malformed hash %q verified as true", bad)
		}
	}
}
