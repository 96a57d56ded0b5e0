// Package jws produces and validates compact-serialized signed tokens.
//
// Signing covers RS256/384/512, ES256/384/512 and HS256. The "none"
// algorithm is refused for signing and only accepted during verification
// under an explicit caller policy, which prevents alg-confusion downgrades.
package jws

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// KeyResolver looks up verification material by kid. It returns whatever
// golang-jwt expects for the key's algorithm (*rsa.PublicKey,
// *ecdsa.PublicKey, or []byte for HMAC).
type KeyResolver func(kid string) (any, error)

// VerifyPolicy controls what Verify accepts.
type VerifyPolicy struct {
	// AllowNone permits unsigned tokens. Off by default; only test
	// tooling should ever set it.
	AllowNone bool

	// ExpectedType, when set, requires the token's "typ" claim to match
	// (e.g. "access" or "rpt").
	ExpectedType string
}

var signingMethods = map[keys.Algorithm]jwt.SigningMethod{
	keys.AlgRS256: jwt.SigningMethodRS256,
	keys.AlgRS384: jwt.SigningMethodRS384,
	keys.AlgRS512: jwt.SigningMethodRS512,
	keys.AlgES256: jwt.SigningMethodES256,
	keys.AlgES384: jwt.SigningMethodES384,
	keys.AlgES512: jwt.SigningMethodES512,
	keys.AlgHS256: jwt.SigningMethodHS256,
}

// Manager handles JWS creation and validation for a single issuer.
type Manager struct {
	issuer string
}

// NewManager creates a new JWS manager.
func NewManager(issuer string) *Manager {
	return &Manager{issuer: issuer}
}

// Issuer returns the iss value the manager signs with.
func (m *Manager) Issuer() string {
	return m.issuer
}

// Sign serializes and signs the claims with the given key, embedding the
// key's kid in the header. Fails with ErrUnsupportedAlgorithm for "none"
// or unknown algorithms.
func (m *Manager) Sign(key *keys.SigningKey, claims jwt.Claims) (string, error) {
	method, ok := signingMethods[key.Algorithm]
	if !ok {
		return "", apperrors.Wrap(apperrors.ErrUnsupportedAlgorithm, string(key.Algorithm))
	}

	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = key.KID

	signed, err := token.SignedString(key.SignerMaterial())
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify re-parses a compact token, resolves the verification key via the
// header kid, and validates signature, issuer, and the numeric exp/iat
// claims. It fails closed: any mismatch, malformed segment, or unknown
// algorithm yields ErrVerificationFailure and no claims.
func (m *Manager) Verify(tokenString string, resolve KeyResolver, policy VerifyPolicy) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if err := m.verifyInto(tokenString, resolve, policy, claims); err != nil {
		return nil, err
	}

	if policy.ExpectedType != "" && claims.Type != policy.ExpectedType {
		return nil, apperrors.Wrap(apperrors.ErrVerificationFailure, "unexpected token type")
	}

	return claims, nil
}

// VerifyIDToken validates an OIDC ID token.
func (m *Manager) VerifyIDToken(tokenString string, resolve KeyResolver) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	if err := m.verifyInto(tokenString, resolve, VerifyPolicy{}, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRPT validates a UMA Requesting Party Token.
func (m *Manager) VerifyRPT(tokenString string, resolve KeyResolver) (*RPTClaims, error) {
	claims := &RPTClaims{}
	if err := m.verifyInto(tokenString, resolve, VerifyPolicy{}, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeRPT {
		return nil, apperrors.Wrap(apperrors.ErrVerificationFailure, "unexpected token type")
	}
	return claims, nil
}

func (m *Manager) verifyInto(tokenString string, resolve KeyResolver, policy VerifyPolicy, claims jwt.Claims) error {
	validMethods := make([]string, 0, len(signingMethods)+1)
	for alg := range signingMethods {
		validMethods = append(validMethods, string(alg))
	}
	if policy.AllowNone {
		validMethods = append(validMethods, "none")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(validMethods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(m.issuer),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method == jwt.SigningMethodNone {
			if !policy.AllowNone {
				return nil, fmt.Errorf("alg none rejected by policy")
			}
			return jwt.UnsafeAllowNoneSignatureType, nil
		}

		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing kid in token header")
		}

		return resolve(kid)
	})

	if err != nil {
		// An unreachable key store is an infrastructure failure, not a
		// verdict on the token.
		if apperrors.Is(err, apperrors.ErrStoreUnavailable) {
			return apperrors.Wrap(err, "key lookup failed")
		}
		return fmt.Errorf("%w: %w", apperrors.ErrVerificationFailure, err)
	}
	if !token.Valid {
		return apperrors.ErrVerificationFailure
	}

	return nil
}

// ExtractKID extracts the key ID from a token without full validation.
// Useful for key lookup before validation; the result must never be
// trusted on its own.
func ExtractKID(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", apperrors.Wrap(err, "failed to parse token")
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return "", fmt.Errorf("missing kid in token header")
	}

	return kid, nil
}
