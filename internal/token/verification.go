package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// ErrVerificationTokenInvalid covers unknown and expired verification
// tokens; the store cannot tell the cases apart once the mapping is gone.
var ErrVerificationTokenInvalid = errors.New("invalid or expired verification token")

// VerificationStore persists verification token → user id mappings.
// Expiry is the store's responsibility (TTL).
type VerificationStore interface {
	Save(ctx context.Context, tok, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tok string) (string, error)
}

// VerificationService issues and validates time-bound email-verification
// tokens, each bound to exactly one user id.
type VerificationService struct {
	store VerificationStore
	ttl   time.Duration
}

func NewVerificationService(store VerificationStore, ttl time.Duration) *VerificationService {
	return &VerificationService{store: store, ttl: ttl}
}

// Generate mints a fresh random token bound to userID.
func (s *VerificationService) Generate(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	tok := base64.RawURLEncoding.EncodeToString(b)
	if err := s.store.Save(ctx, tok, userID, s.ttl); err != nil {
		return "", err
	}
	return tok, nil
}

// Validate resolves the token to its user id. Validation does not consume
// the token; single-use is enforced at the user level, where the verified
// transition is monotonic, so replays stay idempotent.
func (s *VerificationService) Validate(ctx context.Context, tok string) (string, error) {
	if tok == "" {
		return "", ErrVerificationTokenInvalid
	}
	uid, err := s.store.Lookup(ctx, tok)
	if err != nil {
		return "", err
	}
	if uid == "" {
		return "", ErrVerificationTokenInvalid
	}
	return uid, nil
}
