package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// ClientRepository persists OAuth clients in PostgreSQL.
type ClientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *oauth.Client) error {
	grantTypes := make([]string, len(client.GrantTypes))
	for i, gt := range client.GrantTypes {
		grantTypes[i] = string(gt)
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO clients (id, client_id, client_secret_hash, name, redirect_uris, grant_types,
			scopes, is_confidential, offline_access, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		client.ID, client.ClientID, client.ClientSecretHash, client.Name,
		client.RedirectURIs, grantTypes, client.Scopes,
		client.IsConfidential, client.OfflineAccess, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return apperrors.Wrap(err, "client already exists")
		}
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*oauth.Client, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *ClientRepository) GetByClientID(ctx context.Context, clientID string) (*oauth.Client, error) {
	return r.getBy(ctx, `WHERE client_id = $1`, clientID)
}

func (r *ClientRepository) getBy(ctx context.Context, where string, arg any) (*oauth.Client, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, client_id, client_secret_hash, name, redirect_uris, grant_types,
			scopes, is_confidential, offline_access, created_at, updated_at
		FROM clients `+where, arg)

	client, err := scanClient(row)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *oauth.Client) error {
	grantTypes := make([]string, len(client.GrantTypes))
	for i, gt := range client.GrantTypes {
		grantTypes[i] = string(gt)
	}

	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE clients SET client_secret_hash = $2, name = $3, redirect_uris = $4,
			grant_types = $5, scopes = $6, is_confidential = $7, offline_access = $8, updated_at = $9
		WHERE id = $1`,
		client.ID, client.ClientSecretHash, client.Name, client.RedirectURIs,
		grantTypes, client.Scopes, client.IsConfidential, client.OfflineAccess, time.Now().UTC(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*oauth.Client, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, client_id, client_secret_hash, name, redirect_uris, grant_types,
			scopes, is_confidential, offline_access, created_at, updated_at
		FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	defer rows.Close()

	var result []*oauth.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan client")
		}
		result = append(result, client)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return result, nil
}

func scanClient(row rowScanner) (*oauth.Client, error) {
	var client oauth.Client
	var grantTypes []string
	if err := row.Scan(
		&client.ID, &client.ClientID, &client.ClientSecretHash, &client.Name,
		&client.RedirectURIs, &grantTypes, &client.Scopes,
		&client.IsConfidential, &client.OfflineAccess, &client.CreatedAt, &client.UpdatedAt,
	); err != nil {
		return nil, err
	}

	client.GrantTypes = make([]oauth.GrantType, len(grantTypes))
	for i, gt := range grantTypes {
		client.GrantTypes[i] = oauth.GrantType(gt)
	}
	return &client, nil
}
