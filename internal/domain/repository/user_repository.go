package repository

import (
	"context"
	"errors"

	"github.com/workflo/identity/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when Add violates the email-hash
	// uniqueness constraint. Handlers treat it like the pre-check hit.
	ErrDuplicateEmail = errors.New("email hash already exists")
)

// UserRepository is the persistence boundary for the User aggregate.
type UserRepository interface {
	Add(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmailHash(ctx context.Context, emailHash string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
