package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
//
// The raw email address is never stored; EmailHash is the only persisted
// representation and doubles as the unique lookup key. Password material
// lives behind the Credential sum type so OAuth-only accounts carry no
// magic placeholder hash.
type User struct {
	ID            string
	EmailHash     string
	Credential    Credential
	EmailVerified bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser constructs a user in the post-registration state: active,
// email not yet verified.
func NewUser(id, emailHash string, cred Credential, now time.Time) *User {
	return &User{
		ID:            id,
		EmailHash:     emailHash,
		Credential:    cred,
		EmailVerified: false,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkEmailVerified transitions EmailVerified to true. The transition is
// monotonic; calling it on an already-verified user is a no-op.
func (u *User) MarkEmailVerified(now time.Time) {
	if u.EmailVerified {
		return
	}
	u.EmailVerified = true
	u.UpdatedAt = now
}

// Credential is the sum of the two ways an account can authenticate locally:
// a stored password hash, or no local password at all (OAuth-only accounts).
type Credential interface {
	isCredential()
}

// LocalCredential holds the bcrypt hash for password accounts.
type LocalCredential struct {
	PasswordHash string
}

// OAuthOnly marks accounts created through an OAuth provider; a password
// check against such an account is never meaningful.
type OAuthOnly struct{}

func (LocalCredential) isCredential() {}
func (OAuthOnly) isCredential() {}

// PasswordHash returns the stored hash and whether the user has one.
func (u *User) PasswordHash() (string, bool) {
	if c, ok := u.Credential.(LocalCredential); ok {
		return c.PasswordHash, true
	}
	return "", false
}
