package jws

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
	"github.com/ruziba3vich/token-service/internal/domain/uma"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

const testIssuer = "https://auth.test"

func generateKey(t *testing.T, alg keys.Algorithm) *keys.SigningKey {
	t.Helper()
	gen := crypto.NewKeyGenerator(2048, time.Hour)
	key, err := gen.Generate(alg)
	require.NoError(t, err)
	return key
}

func resolverFor(key *keys.SigningKey) KeyResolver {
	return func(kid string) (any, error) {
		if kid != key.KID {
			return nil, apperrors.ErrKeyNotFound
		}
		return key.VerifierMaterial(), nil
	}
}

func TestSignAndVerifyAllAlgorithms(t *testing.T) {
	algorithms := []keys.Algorithm{
		keys.AlgRS256, keys.AlgRS384, keys.AlgRS512,
		keys.AlgES256, keys.AlgES384, keys.AlgES512,
		keys.AlgHS256,
	}

	manager := NewManager(testIssuer)

	for _, alg := range algorithms {
		t.Run(string(alg), func(t *testing.T) {
			key := generateKey(t, alg)
			claims := NewAccessClaims(testIssuer, "user-1", []string{"client-1"}, "client-1", "read write", 15*time.Minute)

			signed, err := manager.Sign(key, claims)
			require.NoError(t, err)
			require.Equal(t, 3, len(strings.Split(signed, ".")))

			verified, err := manager.Verify(signed, resolverFor(key), VerifyPolicy{ExpectedType: TypeAccess})
			require.NoError(t, err)
			assert.Equal(t, "user-1", verified.Subject)
			assert.Equal(t, "client-1", verified.ClientID)
			assert.Equal(t, "read write", verified.Scope)
			assert.Equal(t, claims.ID, verified.ID)
		})
	}
}

func TestSignRefusesNoneAlgorithm(t *testing.T) {
	manager := NewManager(testIssuer)
	key := &keys.SigningKey{KID: "k1", Algorithm: keys.AlgNone}

	_, err := manager.Sign(key, NewAccessClaims(testIssuer, "u", nil, "c", "", time.Minute))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedAlgorithm)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	manager := NewManager(testIssuer)
	claims := NewAccessClaims(testIssuer, "user-1", nil, "client-1", "read", time.Minute)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	resolve := func(string) (any, error) { return nil, apperrors.ErrKeyNotFound }

	_, err = manager.Verify(unsigned, resolve, VerifyPolicy{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)

	// Only an explicit opt-in accepts alg none.
	verified, err := manager.Verify(unsigned, resolve, VerifyPolicy{AllowNone: true})
	require.NoError(t, err)
	assert.Equal(t, "user-1", verified.Subject)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgES256)

	signed, err := manager.Sign(key, NewAccessClaims(testIssuer, "u", nil, "c", "read", time.Minute))
	require.NoError(t, err)

	last := signed[len(signed)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := signed[:len(signed)-1] + string(flipped)

	_, err = manager.Verify(tampered, resolverFor(key), VerifyPolicy{})
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	key := generateKey(t, keys.AlgES256)
	signer := NewManager("https://other.test")

	signed, err := signer.Sign(key, NewAccessClaims("https://other.test", "u", nil, "c", "", time.Minute))
	require.NoError(t, err)

	_, err = NewManager(testIssuer).Verify(signed, resolverFor(key), VerifyPolicy{})
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgES256)

	signed, err := manager.Sign(key, NewAccessClaims(testIssuer, "u", nil, "c", "", -time.Minute))
	require.NoError(t, err)

	_, err = manager.Verify(signed, resolverFor(key), VerifyPolicy{})
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)
}

func TestVerifyRejectsMissingKID(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgHS256)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, NewAccessClaims(testIssuer, "u", nil, "c", "", time.Minute))
	signed, err := token.SignedString(key.SignerMaterial())
	require.NoError(t, err)

	_, err = manager.Verify(signed, resolverFor(key), VerifyPolicy{})
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)
}

func TestVerifyTypePolicy(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgES256)

	signed, err := manager.Sign(key, NewAccessClaims(testIssuer, "u", nil, "c", "", time.Minute))
	require.NoError(t, err)

	_, err = manager.Verify(signed, resolverFor(key), VerifyPolicy{ExpectedType: TypeRPT})
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)
}

func TestAccessClaimsExpiryIsExactlyIssuedPlusTTL(t *testing.T) {
	ttl := 15 * time.Minute
	claims := NewAccessClaims(testIssuer, "u", nil, "c", "", ttl)

	assert.True(t, claims.ExpiresAt.Time.Equal(claims.IssuedAt.Time.Add(ttl)))
	assert.True(t, claims.IssuedAt.Time.Equal(claims.IssuedAt.Time.Truncate(time.Second)))
	assert.NotEmpty(t, claims.ID)
}

func TestRPTRoundTrip(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgRS256)

	perms := []uma.Permission{{ResourceSetID: "rs-1", Scopes: []string{"read", "write"}}}
	claims := NewRPTClaims(testIssuer, "owner-1", []string{"client-1"}, "client-1", perms, time.Minute)

	signed, err := manager.Sign(key, claims)
	require.NoError(t, err)

	verified, err := manager.VerifyRPT(signed, resolverFor(key))
	require.NoError(t, err)
	require.Len(t, verified.Permissions, 1)
	assert.Equal(t, "rs-1", verified.Permissions[0].ResourceSetID)
	assert.Equal(t, []string{"read", "write"}, verified.Permissions[0].Scopes)

	// An access token is not an RPT.
	accessSigned, err := manager.Sign(key, NewAccessClaims(testIssuer, "u", nil, "c", "", time.Minute))
	require.NoError(t, err)
	_, err = manager.VerifyRPT(accessSigned, resolverFor(key))
	assert.Error(t, err)
}

func TestExtractKID(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgES256)

	signed, err := manager.Sign(key, NewAccessClaims(testIssuer, "u", nil, "c", "", time.Minute))
	require.NoError(t, err)

	kid, err := ExtractKID(signed)
	require.NoError(t, err)
	assert.Equal(t, key.KID, kid)
}

func TestGenerateJWKSSkipsSymmetricKeys(t *testing.T) {
	rsaKey := generateKey(t, keys.AlgRS256)
	ecKey := generateKey(t, keys.AlgES256)
	hmacKey := generateKey(t, keys.AlgHS256)

	jwks := GenerateJWKS([]*keys.SigningKey{rsaKey, ecKey, hmacKey})
	require.Len(t, jwks.Keys, 2)

	kids := []string{jwks.Keys[0].KID, jwks.Keys[1].KID}
	assert.Contains(t, kids, rsaKey.KID)
	assert.Contains(t, kids, ecKey.KID)
	assert.NotContains(t, kids, hmacKey.KID)
}

func TestVerifyPreservesResolverErrors(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgES256)
	claims := NewAccessClaims(testIssuer, "user-1", []string{"client-1"}, "client-1", "read", 15*time.Minute)

	signed, err := manager.Sign(key, claims)
	require.NoError(t, err)

	// An unknown kid is a verification failure, and the resolver's
	// sentinel stays reachable through the chain.
	_, err = manager.Verify(signed, func(string) (any, error) {
		return nil, apperrors.ErrKeyNotFound
	}, VerifyPolicy{})
	assert.ErrorIs(t, err, apperrors.ErrVerificationFailure)
	assert.ErrorIs(t, err, apperrors.ErrKeyNotFound)
}

func TestVerifyDoesNotMaskStoreOutage(t *testing.T) {
	manager := NewManager(testIssuer)
	key := generateKey(t, keys.AlgES256)
	claims := NewAccessClaims(testIssuer, "user-1", []string{"client-1"}, "client-1", "read", 15*time.Minute)

	signed, err := manager.Sign(key, claims)
	require.NoError(t, err)

	_, err = manager.Verify(signed, func(string) (any, error) {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, "dial timeout")
	}, VerifyPolicy{})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, apperrors.ErrVerificationFailure)
}
