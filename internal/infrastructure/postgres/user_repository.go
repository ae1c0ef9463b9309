package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workflo/identity/internal/domain/entity"
	"github.com/workflo/identity/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Add(ctx context.Context, u *entity.User) error {
	hash, _ := passwordHashColumn(u)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email_hash, password_hash, email_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.EmailHash, hash, u.EmailVerified, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email_hash, password_hash, email_verified, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmailHash(ctx context.Context, emailHash string) (*entity.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email_hash, password_hash, email_verified, is_active, created_at, updated_at
		FROM users
		WHERE email_hash = $1
	`, emailHash))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()
	hash, _ := passwordHashColumn(u)

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, email_verified = $2, is_active = $3, updated_at = $4
		WHERE id = $5
	`, hash, u.EmailVerified, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var hash *string
	if err := row.Scan(&u.ID, &u.EmailHash, &hash, &u.EmailVerified, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if hash != nil {
		u.Credential = entity.LocalCredential{PasswordHash: *hash}
	} else {
		u.Credential = entity.OAuthOnly{}
	}
	return u, nil
}

// passwordHashColumn maps the credential sum type onto the nullable
// password_hash column: NULL means OAuth-only.
func passwordHashColumn(u *entity.User) (*string, bool) {
	if c, ok := u.Credential.(entity.LocalCredential); ok {
		return &c.PasswordHash, true
	}
	return nil, false
}

var _ repository.UserRepository = (*UserRepository)(nil)
