package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

func newUMA(env *testEnv) *UMAService {
	return NewUMAService(env.sets, env.tickets, env.tokenGen, 5*time.Minute, logger.Nop())
}

func TestResourceSetCRUD(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newUMA(env)
	ctx := context.Background()

	created, err := svc.RegisterResourceSet(ctx, &dto.ResourceSetRequest{
		Name:   "photos",
		Owner:  "alice",
		Scopes: []string{"read", "write"},
		Type:   "album",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.GetResourceSet(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "photos", got.Name)
	assert.Equal(t, []string{"read", "write"}, got.Scopes)

	updated, err := svc.UpdateResourceSet(ctx, created.ID, &dto.ResourceSetRequest{
		Name:   "photos-2026",
		Owner:  "alice",
		Scopes: []string{"read"},
	})
	require.NoError(t, err)
	assert.Equal(t, "photos-2026", updated.Name)
	assert.Equal(t, []string{"read"}, updated.Scopes)

	listed, err := svc.ListResourceSets(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	require.NoError(t, svc.DeleteResourceSet(ctx, created.ID))

	_, err = svc.GetResourceSet(ctx, created.ID)
	assert.ErrorIs(t, err, errors.ErrResourceSetNotFound)
}

func TestGetResourceSetBadID(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newUMA(env)

	_, err := svc.GetResourceSet(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestRequestPermissionIssuesRedeemableTicket(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newUMA(env)
	ctx := context.Background()

	created, err := svc.RegisterResourceSet(ctx, &dto.ResourceSetRequest{
		Name:   "docs",
		Owner:  "alice",
		Scopes: []string{"read", "write"},
	})
	require.NoError(t, err)

	perm, err := svc.RequestPermission(ctx, "web-app", &dto.PermissionRequest{
		ResourceSetID: created.ID,
		Scopes:        []string{"read"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, perm.Ticket)

	// The ticket works against the token endpoint.
	resp, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "urn:ietf:params:oauth:grant-type:uma-ticket",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Ticket:       perm.Ticket,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "read", resp.Scope)
}

func TestRequestPermissionRejectsUnknownScope(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newUMA(env)
	ctx := context.Background()

	created, err := svc.RegisterResourceSet(ctx, &dto.ResourceSetRequest{
		Name:   "docs",
		Owner:  "alice",
		Scopes: []string{"read"},
	})
	require.NoError(t, err)

	_, err = svc.RequestPermission(ctx, "web-app", &dto.PermissionRequest{
		ResourceSetID: created.ID,
		Scopes:        []string{"delete"},
	})
	assert.ErrorIs(t, err, errors.ErrInvalidScope)
}

func TestRequestPermissionUnknownResourceSet(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newUMA(env)

	_, err := svc.RequestPermission(context.Background(), "web-app", &dto.PermissionRequest{
		ResourceSetID: "0e4a51f1-6c1e-4b54-9b4f-8c5a9d1f2e3a",
		Scopes:        []string{"read"},
	})
	assert.ErrorIs(t, err, errors.ErrResourceSetNotFound)
}
