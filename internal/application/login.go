package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/workflo/identity/internal/domain/repository"
)

// Login checks credentials in strict order, short-circuiting on the first
// failure. Unknown email and wrong password return the same generic
// failure so the endpoint cannot be used for account enumeration.
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(cmd.Email)
	if email == "" || cmd.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmailHash(ctx, s.hasher.HashEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, hasLocal := u.PasswordHash()
	if !hasLocal || !s.hasher.VerifyPassword(cmd.Password, hash) {
		return nil, ErrInvalidCredentials
	}

	// Existence is already implied by the successful password check, so the
	// distinct messages below leak nothing new.
	if !u.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	pair, err := s.issueTokens(u.ID, u.EmailHash, cmd.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &LoginResult{UserID: u.ID, Tokens: pair}, nil
}

// Logout revokes the presented refresh token. Always succeeds: revoking a
// garbage or already-revoked token is not an error, so unreliable clients
// can retry freely.
func (s *Service) Logout(ctx context.Context, cmd LogoutCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.tokens.RevokeRefreshToken(ctx, cmd.RefreshToken); err != nil {
		// Revocation-store faults still should not fail a logout; the
		// token dies with its own expiry regardless.
		if s.logger != nil {
			s.logger.WithError(err).Warn("refresh token revocation failed during logout")
		}
	}
	return nil
}
