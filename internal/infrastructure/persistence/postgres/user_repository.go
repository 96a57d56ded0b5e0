package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/user"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// UserRepository persists resource owners in PostgreSQL.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Status), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return apperrors.Wrap(err, "user already exists")
		}
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getBy(ctx, `WHERE username = $1`, username)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*user.User, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, status, created_at, updated_at, last_login_at
		FROM users `+where, arg)

	var u user.User
	var status string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &status, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt); err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	u.Status = user.Status(status)
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET username = $2, email = $3, password_hash = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Status), time.Now().UTC(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}
