package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/uma"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// ResourceSetRepository persists UMA resource sets in PostgreSQL.
type ResourceSetRepository struct {
	db *DB
}

func NewResourceSetRepository(db *DB) *ResourceSetRepository {
	return &ResourceSetRepository{db: db}
}

func (r *ResourceSetRepository) Create(ctx context.Context, rs *uma.ResourceSet) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO resource_sets (id, name, owner, scopes, type, icon_uri, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rs.ID, rs.Name, rs.Owner, rs.Scopes, rs.Type, rs.IconURI, rs.CreatedAt, rs.UpdatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return apperrors.Wrap(err, "resource set already exists")
		}
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *ResourceSetRepository) GetByID(ctx context.Context, id uuid.UUID) (*uma.ResourceSet, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, owner, scopes, type, icon_uri, created_at, updated_at
		FROM resource_sets WHERE id = $1`, id)

	var rs uma.ResourceSet
	if err := row.Scan(&rs.ID, &rs.Name, &rs.Owner, &rs.Scopes, &rs.Type, &rs.IconURI, &rs.CreatedAt, &rs.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrResourceSetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return &rs, nil
}

func (r *ResourceSetRepository) Update(ctx context.Context, rs *uma.ResourceSet) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE resource_sets SET name = $2, owner = $3, scopes = $4, type = $5, icon_uri = $6, updated_at = $7
		WHERE id = $1`,
		rs.ID, rs.Name, rs.Owner, rs.Scopes, rs.Type, rs.IconURI, time.Now().UTC(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceSetNotFound
	}
	return nil
}

func (r *ResourceSetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM resource_sets WHERE id = $1`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *ResourceSetRepository) List(ctx context.Context, owner string, limit, offset int) ([]*uma.ResourceSet, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, owner, scopes, type, icon_uri, created_at, updated_at
		FROM resource_sets WHERE owner = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	defer rows.Close()

	var result []*uma.ResourceSet
	for rows.Next() {
		var rs uma.ResourceSet
		if err := rows.Scan(&rs.ID, &rs.Name, &rs.Owner, &rs.Scopes, &rs.Type, &rs.IconURI, &rs.CreatedAt, &rs.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan resource set")
		}
		result = append(result, &rs)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return result, nil
}
