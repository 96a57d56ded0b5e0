package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	"github.com/ruziba3vich/token-service/internal/infrastructure/persistence/memory"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

func newKeyFixture() (*KeyService, *memory.SigningKeyRepository) {
	repo := memory.NewSigningKeyRepository()
	svc := NewKeyService(repo, crypto.NewKeyGenerator(2048, time.Hour), keys.AlgES256, logger.Nop())
	return svc, repo
}

func TestKeyServiceInitialize(t *testing.T) {
	svc, _ := newKeyFixture()
	ctx := context.Background()

	require.NoError(t, svc.Initialize(ctx))

	key, err := svc.ActiveKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys.AlgES256, key.Algorithm)
	assert.True(t, key.CanSign())

	// A second Initialize keeps the existing key.
	require.NoError(t, svc.Initialize(ctx))
	again, err := svc.ActiveKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, key.KID, again.KID)
}

func TestKeyServiceRotation(t *testing.T) {
	svc, _ := newKeyFixture()
	ctx := context.Background()

	require.NoError(t, svc.Initialize(ctx))
	first, err := svc.ActiveKey(ctx)
	require.NoError(t, err)

	rotated, err := svc.RotateKey(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.KID, rotated.KID)

	active, err := svc.ActiveKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, rotated.KID, active.KID)

	// The superseded key still resolves for verification.
	material, err := svc.KeyResolver(ctx)(first.KID)
	require.NoError(t, err)
	assert.NotNil(t, material)
}

func TestKeyServiceJWKS(t *testing.T) {
	svc, _ := newKeyFixture()
	ctx := context.Background()

	require.NoError(t, svc.Initialize(ctx))

	jwks, err := svc.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "EC", jwks.Keys[0].KeyType)
	assert.Equal(t, "sig", jwks.Keys[0].Use)

	// Rotation invalidates the cache; both keys publish.
	_, err = svc.RotateKey(ctx)
	require.NoError(t, err)

	jwks, err = svc.GetJWKS(ctx)
	require.NoError(t, err)
	assert.Len(t, jwks.Keys, 2)
}

func TestKeyServiceJWKSCached(t *testing.T) {
	svc, repo := newKeyFixture()
	ctx := context.Background()

	require.NoError(t, svc.Initialize(ctx))

	first, err := svc.GetJWKS(ctx)
	require.NoError(t, err)

	// A key slipped in behind the service's back is invisible until the
	// next rotation rebuilds the document.
	extra, err := crypto.NewKeyGenerator(2048, time.Hour).Generate(keys.AlgES256)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, extra))

	cached, err := svc.GetJWKS(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Keys, len(first.Keys))
}

func TestKeyServiceCleanupExpiredKeys(t *testing.T) {
	svc, repo := newKeyFixture()
	ctx := context.Background()

	require.NoError(t, svc.Initialize(ctx))

	dead, err := crypto.NewKeyGenerator(2048, time.Hour).Generate(keys.AlgES256)
	require.NoError(t, err)
	dead.Active = false
	dead.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, dead))

	deleted, err := svc.CleanupExpiredKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = svc.KeyResolver(ctx)(dead.KID)
	assert.Error(t, err)
}

func TestKeyResolverRejectsExpiredKey(t *testing.T) {
	svc, repo := newKeyFixture()
	ctx := context.Background()

	stale, err := crypto.NewKeyGenerator(2048, time.Hour).Generate(keys.AlgES256)
	require.NoError(t, err)
	stale.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, stale))

	_, err = svc.KeyResolver(ctx)(stale.KID)
	assert.Error(t, err)
}
