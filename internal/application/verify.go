package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/workflo/identity/internal/domain/repository"
)

// VerifyEmail resolves a verification token and flips the user's verified
// flag. Idempotent: a token resolving to an already-verified user succeeds
// without re-mutating state.
func (s *Service) VerifyEmail(ctx context.Context, cmd VerifyEmailCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cmd.Token == "" {
		return ErrTokenRequired
	}

	userID, err := s.verify.Validate(ctx, cmd.Token)
	if err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if u.EmailVerified {
		return nil
	}

	u.MarkEmailVerified(s.now().UTC())
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	if s.logger != nil {
		s.logger.WithField("user_id", u.ID).Info("email verified")
	}
	return nil
}
