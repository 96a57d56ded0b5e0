package jws

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/uma"
)

// Token type discriminators carried in the "typ" claim.
const (
	TypeAccess = "access"
	TypeRPT    = "rpt"
)

// AccessTokenClaims represents the claims in an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
	Type     string `json:"typ"`
}

// IDTokenClaims represents the claims in an OIDC ID token.
type IDTokenClaims struct {
	jwt.RegisteredClaims
	AuthTime      int64  `json:"auth_time"`
	Nonce         string `json:"nonce,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// RPTClaims represents the claims in a UMA Requesting Party Token.
type RPTClaims struct {
	jwt.RegisteredClaims
	ClientID    string           `json:"client_id"`
	Type        string           `json:"typ"`
	Permissions []uma.Permission `json:"permissions"`
}

// NewAccessClaims assembles an access token payload. Deterministic given
// identical inputs except for jti (128-bit random) and iat/exp
// (wall-clock-derived). exp is exactly iat + ttl.
func NewAccessClaims(issuer, subject string, audience []string, clientID, scope string, ttl time.Duration) *AccessTokenClaims {
	now := time.Now().UTC().Truncate(time.Second)

	return &AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		ClientID: clientID,
		Scope:    scope,
		Type:     TypeAccess,
	}
}

// NewIDClaims assembles an OIDC ID token payload.
func NewIDClaims(issuer, subject, audience, email string, emailVerified bool, nonce string, authTime time.Time, ttl time.Duration) *IDTokenClaims {
	now := time.Now().UTC().Truncate(time.Second)

	return &IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		AuthTime:      authTime.Unix(),
		Nonce:         nonce,
		Email:         email,
		EmailVerified: emailVerified,
	}
}

// NewRPTClaims assembles a Requesting Party Token payload from resolved
// permissions.
func NewRPTClaims(issuer, subject string, audience []string, clientID string, permissions []uma.Permission, ttl time.Duration) *RPTClaims {
	now := time.Now().UTC().Truncate(time.Second)

	return &RPTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		ClientID:    clientID,
		Type:        TypeRPT,
		Permissions: permissions,
	}
}
