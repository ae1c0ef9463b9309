package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/workflo/identity/internal/domain/repository"
)

// RefreshToken rotates a refresh token: validate, consume the presented
// token, issue a new pair. Security checks run before any repository
// access so user data cannot serve as a token-probing side channel, and
// consumption is atomic so concurrent refreshes with the same token yield
// at most one winner.
func (s *Service) RefreshToken(ctx context.Context, cmd RefreshTokenCommand) (*LoginResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userID, ok := s.tokens.GetUserIDFromToken(cmd.RefreshToken)
	if !ok {
		return nil, ErrInvalidRefreshToken
	}

	valid, err := s.tokens.ValidateRefreshToken(ctx, cmd.RefreshToken, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	if !valid {
		return nil, ErrRefreshTokenInvalid
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserInactive
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	// Single-use rotation: whoever consumes the presented token first gets
	// to mint the replacement; everyone else sees it as already revoked.
	won, err := s.tokens.ConsumeRefreshToken(ctx, cmd.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !won {
		return nil, ErrRefreshTokenInvalid
	}

	pair, err := s.issueTokens(u.ID, u.EmailHash, false)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &LoginResult{UserID: u.ID, Tokens: pair}, nil
}
