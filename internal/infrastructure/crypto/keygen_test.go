package crypto

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

func TestGenerateAsymmetricKeys(t *testing.T) {
	gen := NewKeyGenerator(2048, time.Hour)

	tests := []struct {
		alg      keys.Algorithm
		keyCheck func(t *testing.T, key *keys.SigningKey)
	}{
		{keys.AlgRS256, func(t *testing.T, key *keys.SigningKey) {
			_, ok := key.PrivateKey.(*rsa.PrivateKey)
			assert.True(t, ok)
		}},
		{keys.AlgES256, func(t *testing.T, key *keys.SigningKey) {
			ecKey, ok := key.PrivateKey.(*ecdsa.PrivateKey)
			require.True(t, ok)
			assert.Equal(t, "P-256", ecKey.Curve.Params().Name)
		}},
		{keys.AlgES384, func(t *testing.T, key *keys.SigningKey) {
			ecKey, ok := key.PrivateKey.(*ecdsa.PrivateKey)
			require.True(t, ok)
			assert.Equal(t, "P-384", ecKey.Curve.Params().Name)
		}},
		{keys.AlgES512, func(t *testing.T, key *keys.SigningKey) {
			ecKey, ok := key.PrivateKey.(*ecdsa.PrivateKey)
			require.True(t, ok)
			assert.Equal(t, "P-521", ecKey.Curve.Params().Name)
		}},
	}

	for _, tc := range tests {
		t.Run(string(tc.alg), func(t *testing.T) {
			key, err := gen.Generate(tc.alg)
			require.NoError(t, err)

			assert.NotEmpty(t, key.KID)
			assert.True(t, key.Active)
			assert.NotEmpty(t, key.PrivatePEM)
			assert.NotEmpty(t, key.PublicPEM)
			assert.True(t, key.CanSign())
			tc.keyCheck(t, key)
		})
	}
}

func TestGenerateHMACKey(t *testing.T) {
	gen := NewKeyGenerator(2048, time.Hour)

	key, err := gen.Generate(keys.AlgHS256)
	require.NoError(t, err)

	assert.Len(t, key.Secret, 32)
	assert.NotEmpty(t, key.PrivatePEM)
	assert.Empty(t, key.PublicPEM)
}

func TestGenerateRefusesUnsupportedAlgorithms(t *testing.T) {
	gen := NewKeyGenerator(2048, time.Hour)

	_, err := gen.Generate(keys.AlgNone)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedAlgorithm)

	_, err = gen.Generate(keys.Algorithm("PS256"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedAlgorithm)
}

func TestParseKeyMaterialRoundTrip(t *testing.T) {
	gen := NewKeyGenerator(2048, time.Hour)

	for _, alg := range []keys.Algorithm{keys.AlgRS256, keys.AlgES256, keys.AlgHS256} {
		t.Run(string(alg), func(t *testing.T) {
			key, err := gen.Generate(alg)
			require.NoError(t, err)

			restored := &keys.SigningKey{
				KID:        key.KID,
				Algorithm:  key.Algorithm,
				PrivatePEM: key.PrivatePEM,
				PublicPEM:  key.PublicPEM,
				Active:     true,
				CreatedAt:  key.CreatedAt,
				ExpiresAt:  key.ExpiresAt,
			}
			require.NoError(t, ParseKeyMaterial(restored))
			assert.True(t, restored.CanSign())

			if alg == keys.AlgHS256 {
				assert.Equal(t, key.Secret, restored.Secret)
			} else {
				assert.NotNil(t, restored.PrivateKey)
				assert.NotNil(t, restored.PublicKey)
			}
		})
	}
}
