package hashing

import (
	"strings"
	"testing"
)

func TestHashEmailIsDeterministic(t *testing.T) {
	h := New("pepper")
	a := h.HashEmail("alice@example.com")
	b := h.HashEmail("alice@example.com")
	if a != b {
		t.Errorf("same input hashed differently: %q vs %q", a, b)
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Errorf("want lowercase hex sha256 digest, got %q", a)
	}
}

func TestHashEmailNormalizesInput(t *testing.T) {
	h := New("pepper")
	base := h.HashEmail("alice@example.com")
	for _, variant := range []string{
		"ALICE@EXAMPLE.COM",
		"  alice@example.com  ",
		"\tAlice@Example.Com\n",
	} {
		if got := h.HashEmail(variant); got != base {
			t.Errorf("HashEmail(%q) = %q, want %q", variant, got, base)
		}
	}
}

func TestHashEmailKeyed(t *testing.T) {
	a := New("pepper-a").HashEmail("alice@example.com")
	b := New("pepper-b").HashEmail("alice@example.com")
	if a == b {
		t.Error("different keys must yield different digests")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	h := New("pepper")
	hash, err := h.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !h.VerifyPassword("correct horse battery", hash) {
		t.Error("correct password rejected")
	}
	if h.VerifyPassword("wrong password", hash) {
		t.Error("wrong password accepted")
	}
	if h.VerifyPassword("correct horse battery", "not-a-bcrypt-hash") {
		t.Error("garbage hash accepted")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h := New("pepper")
	a, err := h.HashPassword("same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.HashPassword("same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password must differ")
	}
}
