package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ruziba3vich/token-service/internal/domain/token"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

const (
	grantedTokenPrefix = "granted_token:"
	revokedTokenPrefix = "revoked_token:"
)

// GrantedTokenRepository is the access-token cache and revocation list.
// Entries expire with the tokens they describe, so the cache never outlives
// the token state it mirrors.
type GrantedTokenRepository struct {
	client *Client
}

func NewGrantedTokenRepository(client *Client) *GrantedTokenRepository {
	return &GrantedTokenRepository{client: client}
}

type grantedTokenData struct {
	JTI       string    `json:"jti"`
	ClientID  string    `json:"client_id"`
	Subject   string    `json:"subject"`
	Scope     string    `json:"scope"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store caches a granted token keyed by jti until it expires.
func (r *GrantedTokenRepository) Store(ctx context.Context, gt *token.GrantedToken) error {
	ttl := time.Until(gt.ExpiresAt)
	if ttl <= 0 {
		return apperrors.ErrTokenExpired
	}

	data := grantedTokenData{
		JTI:       gt.JTI,
		ClientID:  gt.ClientID,
		Subject:   gt.Subject,
		Scope:     gt.Scope,
		IssuedAt:  gt.IssuedAt,
		ExpiresAt: gt.ExpiresAt,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal granted token")
	}

	if err := r.client.Set(ctx, grantedTokenPrefix+gt.JTI, jsonData, ttl); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}

// GetByJTI retrieves a cached granted token.
func (r *GrantedTokenRepository) GetByJTI(ctx context.Context, jti string) (*token.GrantedToken, error) {
	jsonData, err := r.client.Get(ctx, grantedTokenPrefix+jti)
	if err != nil {
		if err == goredis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	var data grantedTokenData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal granted token")
	}

	return &token.GrantedToken{
		JTI:       data.JTI,
		TokenType: "Bearer",
		ClientID:  data.ClientID,
		Subject:   data.Subject,
		Scope:     data.Scope,
		IssuedAt:  data.IssuedAt,
		ExpiresAt: data.ExpiresAt,
	}, nil
}

// IsRevoked reports whether the token id is on the revocation list.
func (r *GrantedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, revokedTokenPrefix+jti)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return exists, nil
}

// Revoke puts the token id on the revocation list until the token would
// have expired anyway.
func (r *GrantedTokenRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired, nothing to revoke.
		return nil
	}
	if err := r.client.Set(ctx, revokedTokenPrefix+jti, "1", ttl); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}
