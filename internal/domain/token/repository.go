package token

import (
	"context"
	"time"
)

// GrantedTokenRepository is the access-token store/cache used by
// introspection and revocation. Entries live only as long as the token.
type GrantedTokenRepository interface {
	// Store caches a granted token keyed by jti.
	Store(ctx context.Context, gt *GrantedToken) error

	// GetByJTI retrieves a cached granted token.
	GetByJTI(ctx context.Context, jti string) (*GrantedToken, error)

	// IsRevoked reports whether the token id is on the revocation list.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Revoke puts the token id on the revocation list until expiry.
	Revoke(ctx context.Context, jti string, until time.Time) error
}

// RefreshTokenRepository stores refresh tokens by hash.
type RefreshTokenRepository interface {
	// Create persists a new refresh token record.
	Create(ctx context.Context, rt *RefreshToken) error

	// GetByHash retrieves a refresh token by its hashed value.
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// MarkRotated records that the token was superseded. The token stays
	// redeemable until graceUntil; pass the current time for immediate
	// invalidation.
	MarkRotated(ctx context.Context, tokenHash string, graceUntil time.Time) error

	// Revoke invalidates the token immediately.
	Revoke(ctx context.Context, tokenHash string) error

	// DeleteExpired removes expired records (cleanup job).
	DeleteExpired(ctx context.Context) (int64, error)
}
