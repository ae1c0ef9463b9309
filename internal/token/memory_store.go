package token

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocationStore is a process-local RevocationStore for tests and
// single-node development runs.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: map[string]time.Time{}}
}

func (s *MemoryRevocationStore) CompareAndRevoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.revoked[jti]; ok && time.Now().Before(exp) {
		return false, nil
	}
	s.revoked[jti] = time.Now().Add(ttl)
	return true, nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[jti]
	return ok && time.Now().Before(exp), nil
}

// MemoryVerificationStore is a process-local VerificationStore.
type MemoryVerificationStore struct {
	mu     sync.Mutex
	tokens map[string]verificationEntry
}

type verificationEntry struct {
	userID string
	exp    time.Time
}

func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{tokens: map[string]verificationEntry{}}
}

func (s *MemoryVerificationStore) Save(_ context.Context, tok, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok] = verificationEntry{userID: userID, exp: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryVerificationStore) Lookup(_ context.Context, tok string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[tok]
	if !ok || time.Now().After(e.exp) {
		return "", nil
	}
	return e.userID, nil
}

var (
	_ RevocationStore   = (*MemoryRevocationStore)(nil)
	_ VerificationStore = (*MemoryVerificationStore)(nil)
)
