package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/workflo/identity/internal/domain/entity"
	"github.com/workflo/identity/internal/domain/repository"
)

// OAuthLogin exchanges a provider authorization code for a local session,
// creating the account on first sight. A brand-new account whose email the
// provider asserts as verified is the one path that skips the
// Register→VerifyEmail detour.
func (s *Service) OAuthLogin(ctx context.Context, cmd OAuthLoginCommand) (*OAuthLoginResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cmd.Provider) == "" {
		return nil, ErrProviderRequired
	}
	if cmd.Code == "" {
		return nil, ErrCodeRequired
	}

	provider, err := s.providers.Resolve(cmd.Provider)
	if err != nil {
		return nil, err
	}

	info, err := provider.Authenticate(ctx, cmd.Code, cmd.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with %s: %w", provider.Name(), err)
	}

	emailHash := s.hasher.HashEmail(info.Email)
	u, err := s.repo.GetByEmailHash(ctx, emailHash)
	isNew := false
	switch {
	case err == nil:
		// Pre-existing account; the verification gate below decides
		// whether it may receive tokens.
	case errors.Is(err, repository.ErrNotFound):
		u = entity.NewUser(uuid.NewString(), emailHash, entity.OAuthOnly{}, s.now().UTC())
		if info.EmailVerified {
			u.MarkEmailVerified(s.now().UTC())
		}
		if addErr := s.repo.Add(ctx, u); addErr != nil {
			if errors.Is(addErr, repository.ErrDuplicateEmail) {
				// Lost a concurrent first-login race; use the winner's row.
				u, addErr = s.repo.GetByEmailHash(ctx, emailHash)
				if addErr != nil {
					return nil, fmt.Errorf("failed to look up user: %w", addErr)
				}
			} else {
				return nil, fmt.Errorf("failed to create user: %w", addErr)
			}
		} else {
			isNew = true
		}
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.IsActive {
		return nil, ErrAccountDeactivated
	}

	// Tokens go out only to accounts that cleared a verification gate:
	// password accounts pass through Register's own flow, OAuth-created
	// accounts count only once a provider vouched for the email or the
	// user cleared ResendVerification→VerifyEmail. The check binds to the
	// stored account, not to isNew, so retries against a still-unverified
	// OAuth account stay gated.
	if _, hasLocal := u.PasswordHash(); !hasLocal && !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	pair, err := s.issueTokens(u.ID, u.EmailHash, false)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if s.logger != nil {
		s.logger.WithField("provider", provider.Name()).
			WithField("user_id", u.ID).
			WithField("new_user", isNew).
			Info("oauth login")
	}

	// DisplayName is handed back to the caller and forgotten; the aggregate
	// stores no provider PII.
	return &OAuthLoginResult{
		UserID:      u.ID,
		Tokens:      pair,
		IsNewUser:   isNew,
		DisplayName: info.Name,
	}, nil
}
