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

// Register creates a user from email/password credentials. No tokens are
// issued: the account must pass the email-verification gate before Login
// will hand out a session.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if cmd.Password == "" {
		return nil, ErrPasswordRequired
	}
	if cmd.Password != cmd.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	emailHash := s.hasher.HashEmail(email)
	if _, err := s.repo.GetByEmailHash(ctx, emailHash); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	breached, err := s.breach.IsBreached(ctx, cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to check password breach status: %w", err)
	}
	if breached {
		return nil, ErrPasswordBreached
	}

	hash, err := s.hasher.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := entity.NewUser(uuid.NewString(), emailHash, entity.LocalCredential{PasswordHash: hash}, s.now().UTC())
	if err := s.repo.Add(ctx, u); err != nil {
		// Lost the uniqueness race: the constraint is the source of truth,
		// so this is the same failure as the pre-check hit.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tok, err := s.verify.Generate(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := s.email.SendVerificationEmail(ctx, email, tok, ""); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	if s.logger != nil {
		s.logger.WithField("user_id", u.ID).Info("user registered, verification pending")
	}
	return &RegisterResult{UserID: u.ID, EmailVerificationRequired: true}, nil
}

// ResendVerification issues a fresh verification token for an existing,
// still-unverified account.
func (s *Service) ResendVerification(ctx context.Context, cmd ResendVerificationCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return ErrEmailRequired
	}

	u, err := s.repo.GetByEmailHash(ctx, s.hasher.HashEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if u.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	tok, err := s.verify.Generate(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	if err := s.email.SendVerificationEmail(ctx, email, tok, ""); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
