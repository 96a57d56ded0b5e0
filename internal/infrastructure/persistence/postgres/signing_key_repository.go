package postgres

import (
	"context"
	"time"

	domainkeys "github.com/ruziba3vich/token-service/internal/domain/keys"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// SigningKeyRepository persists signing keys in PostgreSQL. Private
// material is stored PEM-encoded and reparsed on load; it never leaves
// this layer in serialized form.
type SigningKeyRepository struct {
	db *DB
}

func NewSigningKeyRepository(db *DB) *SigningKeyRepository {
	return &SigningKeyRepository{db: db}
}

func (r *SigningKeyRepository) Create(ctx context.Context, key *domainkeys.SigningKey) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO signing_keys (kid, algorithm, private_key, public_key, active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.KID, string(key.Algorithm), key.PrivatePEM, key.PublicPEM, key.Active, key.CreatedAt, key.ExpiresAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return apperrors.Wrap(err, "key already exists")
		}
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *SigningKeyRepository) GetByKID(ctx context.Context, kid string) (*domainkeys.SigningKey, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT kid, algorithm, private_key, public_key, active, created_at, expires_at
		FROM signing_keys WHERE kid = $1`, kid)

	key, err := scanSigningKey(row)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return key, nil
}

func (r *SigningKeyRepository) GetActive(ctx context.Context) (*domainkeys.SigningKey, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT kid, algorithm, private_key, public_key, active, created_at, expires_at
		FROM signing_keys WHERE active AND expires_at > $1
		ORDER BY created_at DESC LIMIT 1`, time.Now().UTC())

	key, err := scanSigningKey(row)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNoActiveKey
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return key, nil
}

func (r *SigningKeyRepository) GetAll(ctx context.Context) ([]*domainkeys.SigningKey, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT kid, algorithm, private_key, public_key, active, created_at, expires_at
		FROM signing_keys WHERE expires_at > $1
		ORDER BY created_at DESC`, time.Now().UTC())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	defer rows.Close()

	var result []*domainkeys.SigningKey
	for rows.Next() {
		key, err := scanSigningKey(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan signing key")
		}
		result = append(result, key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return result, nil
}

func (r *SigningKeyRepository) SetActive(ctx context.Context, kid string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE signing_keys SET active = false WHERE active`); err != nil {
		return apperrors.Wrap(err, "failed to deactivate keys")
	}
	if _, err := tx.Exec(ctx, `UPDATE signing_keys SET active = true WHERE kid = $1`, kid); err != nil {
		return apperrors.Wrap(err, "failed to activate key")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *SigningKeyRepository) Delete(ctx context.Context, kid string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM signing_keys WHERE kid = $1`, kid); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *SigningKeyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM signing_keys WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSigningKey(row rowScanner) (*domainkeys.SigningKey, error) {
	var key domainkeys.SigningKey
	var alg string
	if err := row.Scan(&key.KID, &alg, &key.PrivatePEM, &key.PublicPEM, &key.Active, &key.CreatedAt, &key.ExpiresAt); err != nil {
		return nil, err
	}
	key.Algorithm = domainkeys.Algorithm(alg)

	if err := crypto.ParseKeyMaterial(&key); err != nil {
		return nil, err
	}
	return &key, nil
}
