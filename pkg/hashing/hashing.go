package hashing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var errHashFailed = errors.New("hashing failed")

// Hasher produces the two credential digests the identity core stores:
// a deterministic keyed digest of the email (the only persisted email
// representation, used as equality lookup key) and a salted bcrypt hash
// of the password.
type Hasher struct {
	emailKey []byte
}

func New(emailKey string) *Hasher {
	return &Hasher{emailKey: []byte(emailKey)}
}

// HashEmail returns a stable hex digest of the normalized email.
// Equal inputs always map to the same key; the HMAC pepper keeps a leaked
// table from being dictionary-reversed offline.
func (h *Hasher) HashEmail(rawEmail string) string {
	norm := strings.ToLower(strings.TrimSpace(rawEmail))
	mac := hmac.New(sha256.New, h.emailKey)
	mac.Write([]byte(norm))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashPassword hashes the plain text password using bcrypt. The output is
// salted and differs between calls for the same input.
func (h *Hasher) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errHashFailed
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password
func (h *Hasher) VerifyPassword(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
