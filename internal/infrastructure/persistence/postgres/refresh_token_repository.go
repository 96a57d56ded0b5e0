package postgres

import (
	"context"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/token"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// RefreshTokenRepository persists refresh tokens by hash.
type RefreshTokenRepository struct {
	db *DB
}

func NewRefreshTokenRepository(db *DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, rt *token.RefreshToken) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, client_id, subject, scope, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rt.TokenHash, rt.ClientID, rt.Subject, rt.Scope, rt.CreatedAt, rt.ExpiresAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return apperrors.Wrap(err, "refresh token already exists")
		}
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*token.RefreshToken, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT token_hash, client_id, subject, scope, created_at, expires_at,
			rotated_at, grace_until, revoked_at
		FROM refresh_tokens WHERE token_hash = $1`, tokenHash)

	var rt token.RefreshToken
	if err := row.Scan(
		&rt.TokenHash, &rt.ClientID, &rt.Subject, &rt.Scope, &rt.CreatedAt, &rt.ExpiresAt,
		&rt.RotatedAt, &rt.GraceUntil, &rt.RevokedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrInvalidGrant
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) MarkRotated(ctx context.Context, tokenHash string, graceUntil time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE refresh_tokens SET rotated_at = $2, grace_until = $3
		WHERE token_hash = $1 AND rotated_at IS NULL`,
		tokenHash, time.Now().UTC(), graceUntil,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRefreshTokenUsed
	}
	return nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenHash, time.Now().UTC(),
	); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return tag.RowsAffected(), nil
}
