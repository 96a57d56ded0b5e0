package token

import (
	"time"
)

// GrantedToken is the result of a successful grant. Immutable after
// creation; logically destroyed when expired or revoked.
type GrantedToken struct {
	JTI          string // Unique token id (jti claim of the access token)
	AccessToken  string // Compact JWS
	TokenType    string // Always "Bearer"
	ExpiresIn    int64  // Seconds until expiry
	RefreshToken string // Opaque, optional
	IDToken      string // Compact JWS, optional
	Scope        string
	ClientID     string
	Subject      string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// IsExpired checks if the access token has expired.
func (gt *GrantedToken) IsExpired() bool {
	return time.Now().UTC().After(gt.ExpiresAt)
}

// RefreshToken is a long-lived opaque credential exchangeable for new access
// tokens. Only the SHA-256 hash is stored.
type RefreshToken struct {
	TokenHash string // hex SHA-256 of the opaque value
	ClientID  string
	Subject   string
	Scope     string
	CreatedAt time.Time
	ExpiresAt time.Time

	// Rotation state. A rotated token stays redeemable until GraceUntil
	// (zero time = invalid immediately after rotation).
	RotatedAt  *time.Time
	GraceUntil *time.Time
	RevokedAt  *time.Time
}

// NewRefreshToken creates a refresh token record from a hashed value.
func NewRefreshToken(tokenHash, clientID, subject, scope string, ttl time.Duration) *RefreshToken {
	now := time.Now().UTC()
	return &RefreshToken{
		TokenHash: tokenHash,
		ClientID:  clientID,
		Subject:   subject,
		Scope:     scope,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired checks if the refresh token has expired.
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().UTC().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token was explicitly revoked.
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// Usable reports whether the token can still be redeemed at the given time,
// accounting for rotation and the configured grace window.
func (rt *RefreshToken) Usable(now time.Time) bool {
	if rt.IsRevoked() || now.After(rt.ExpiresAt) {
		return false
	}
	if rt.RotatedAt == nil {
		return true
	}
	return rt.GraceUntil != nil && now.Before(*rt.GraceUntil)
}
