package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/workflo/identity/internal/domain/repository"
	"github.com/workflo/identity/internal/oauth"
)

// CredentialHasher is the hashing contract the handlers depend on: a
// deterministic email digest for lookups and a salted password hash.
type CredentialHasher interface {
	HashEmail(rawEmail string) string
	HashPassword(rawPassword string) (string, error)
	VerifyPassword(rawPassword, storedHash string) bool
}

// BreachChecker answers whether a password appears in a compromised-
// credential corpus. Implementations must never log or persist the raw
// password.
type BreachChecker interface {
	IsBreached(ctx context.Context, rawPassword string) (bool, error)
}

// TokenService issues, validates, and revokes access/refresh tokens.
type TokenService interface {
	GenerateAccessToken(userID, emailHash string) (string, error)
	GenerateRefreshToken(userID string, rememberMe bool) (string, error)
	GetTokenExpiryTime(rememberMe bool) time.Time
	ValidateRefreshToken(ctx context.Context, token, userID string) (bool, error)
	GetUserIDFromToken(token string) (string, bool)
	RevokeRefreshToken(ctx context.Context, token string) error
	ConsumeRefreshToken(ctx context.Context, token string) (bool, error)
}

// VerificationTokens issues and resolves time-bound email verification
// tokens. Resolving does not consume: re-verification stays harmless and
// tokens die by TTL.
type VerificationTokens interface {
	Generate(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
}

// EmailSender delivers the verification email. Failure is a first-class
// outcome of the command, not an exception.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toAddress, token, displayContext string) error
}

// Service hosts the identity command handlers. Each handler composes the
// leaf services into one stateless business transaction; handlers never
// call each other and are safe to run concurrently.
type Service struct {
	repo      repository.UserRepository
	hasher    CredentialHasher
	breach    BreachChecker
	tokens    TokenService
	verify    VerificationTokens
	email     EmailSender
	providers *oauth.Registry
	logger    *logrus.Logger

	now func() time.Time
}

func NewService(
	repo repository.UserRepository,
	hasher CredentialHasher,
	breach BreachChecker,
	tokens TokenService,
	verify VerificationTokens,
	email EmailSender,
	providers *oauth.Registry,
	logger *logrus.Logger,
) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		breach:    breach,
		tokens:    tokens,
		verify:    verify,
		email:     email,
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) issueTokens(userID, emailHash string, rememberMe bool) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID, emailHash)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID, rememberMe)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.tokens.GetTokenExpiryTime(rememberMe),
	}, nil
}
