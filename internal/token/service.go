package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed, expired, revoked, and wrong-user tokens.
// Handlers surface it as a domain failure, never as a raw exception.
var ErrInvalidToken = errors.New("invalid or expired refresh token")

// AccessClaims carry the user id and email-hash claim on short-lived access tokens.
type AccessClaims struct {
	UserID    string `json:"uid"`
	EmailHash string `json:"eh"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the user id and a jti used for revocation tracking.
type RefreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// RevocationStore tracks revoked refresh-token ids. CompareAndRevoke is the
// atomic primitive behind single-use rotation: exactly one caller per jti
// observes true.
type RevocationStore interface {
	CompareAndRevoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service issues, validates, and revokes access and refresh tokens.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	rememberTTL   time.Duration
	revoked       RevocationStore

	now func() time.Time
}

func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL, rememberTTL time.Duration, revoked RevocationStore) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		rememberTTL:   rememberTTL,
		revoked:       revoked,
		now:           time.Now,
	}
}

// GenerateAccessToken signs a short-lived token carrying the user id and
// email hash claim.
func (s *Service) GenerateAccessToken(userID, emailHash string) (string, error) {
	now := s.now()
	claims := &AccessClaims{
		UserID:    userID,
		EmailHash: emailHash,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.accessSecret)
}

// GenerateRefreshToken signs an opaque-to-the-client refresh token whose
// expiry follows the rememberMe flag.
func (s *Service) GenerateRefreshToken(userID string, rememberMe bool) (string, error) {
	now := s.now()
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(s.GetTokenExpiryTime(rememberMe)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.refreshSecret)
}

// GetTokenExpiryTime computes the refresh expiry window as a pure function
// of the rememberMe flag.
func (s *Service) GetTokenExpiryTime(rememberMe bool) time.Time {
	if rememberMe {
		return s.now().Add(s.rememberTTL)
	}
	return s.now().Add(s.refreshTTL)
}

// GetUserIDFromToken decodes the user id without verifying the signature.
// Used to look up context before the validity check; never trust the result
// on its own.
func (s *Service) GetUserIDFromToken(tokenStr string) (string, bool) {
	claims := &RefreshClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return "", false
	}
	if claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// ValidateRefreshToken verifies the token is well-signed, unexpired,
// unrevoked, and bound to the claimed user id.
func (s *Service) ValidateRefreshToken(ctx context.Context, tokenStr, userID string) (bool, error) {
	claims, err := s.parseRefresh(tokenStr)
	if err != nil {
		return false, nil
	}
	if claims.UserID != userID {
		return false, nil
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return false, err
	}
	return !revoked, nil
}

// RevokeRefreshToken marks the token revoked. Idempotent: revoking an
// already-revoked or malformed token is not an error (logout and rotation
// correctness depend on this).
func (s *Service) RevokeRefreshToken(ctx context.Context, tokenStr string) error {
	claims, err := s.parseRefresh(tokenStr)
	if err != nil {
		return nil
	}
	_, err = s.revoked.CompareAndRevoke(ctx, claims.ID, s.revocationTTL(claims))
	return err
}

// ConsumeRefreshToken atomically revokes the token and reports whether this
// caller was the one that revoked it. Of two concurrent refresh attempts
// with the same token, at most one observes true.
func (s *Service) ConsumeRefreshToken(ctx context.Context, tokenStr string) (bool, error) {
	claims, err := s.parseRefresh(tokenStr)
	if err != nil {
		return false, nil
	}
	return s.revoked.CompareAndRevoke(ctx, claims.ID, s.revocationTTL(claims))
}

// ParseAccessToken validates an access token and returns its claims.
func (s *Service) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenStr, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) parseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenStr, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return ErrInvalidToken
	}
	if !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}

// revocationTTL keeps the tombstone alive only as long as the token itself
// could still be presented.
func (s *Service) revocationTTL(claims *RefreshClaims) time.Duration {
	if claims.ExpiresAt == nil {
		return s.rememberTTL
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
