package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/domain/keys"
	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	"github.com/ruziba3vich/token-service/internal/domain/uma"
	"github.com/ruziba3vich/token-service/internal/domain/user"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	"github.com/ruziba3vich/token-service/internal/infrastructure/persistence/memory"
	"github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/jws"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

const (
	testIssuer       = "https://auth.test"
	testUserPassword = "hunter2-but-long"
	testClientSecret = "confidential-secret"
)

type testEnv struct {
	tokens   *TokenService
	keys     *KeyService
	users    *memory.UserRepository
	clients  *memory.ClientRepository
	codes    *memory.AuthorizationCodeRepository
	refresh  *memory.RefreshTokenRepository
	granted  *memory.GrantedTokenRepository
	tickets  *memory.TicketRepository
	sets     *memory.ResourceSetRepository
	hasher   *crypto.Argon2Hasher
	tokenGen *crypto.TokenGenerator
	manager  *jws.Manager

	user         *user.User
	confidential *oauth.Client
	public       *oauth.Client
}

func newTestEnv(t *testing.T, rotation RotationPolicy) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		users:    memory.NewUserRepository(),
		clients:  memory.NewClientRepository(),
		codes:    memory.NewAuthorizationCodeRepository(),
		refresh:  memory.NewRefreshTokenRepository(),
		granted:  memory.NewGrantedTokenRepository(),
		tickets:  memory.NewTicketRepository(),
		sets:     memory.NewResourceSetRepository(),
		hasher:   crypto.NewArgon2Hasher(16*1024, 1, 1, 16, 32),
		tokenGen: crypto.NewTokenGenerator(),
		manager:  jws.NewManager(testIssuer),
	}

	keyRepo := memory.NewSigningKeyRepository()
	env.keys = NewKeyService(keyRepo, crypto.NewKeyGenerator(2048, time.Hour), keys.AlgES256, logger.Nop())
	require.NoError(t, env.keys.Initialize(ctx))

	env.tokens = NewTokenService(TokenServiceDeps{
		Clients:       env.clients,
		Users:         env.users,
		Codes:         env.codes,
		RefreshTokens: env.refresh,
		GrantedTokens: env.granted,
		Tickets:       env.tickets,
		ResourceSets:  env.sets,
		Policy:        NewScopePolicyDecider(),
		KeyService:    env.keys,
		JWSManager:    env.manager,
		TokenGen:      env.tokenGen,
		Hasher:        env.hasher,
		TTLs: TokenTTLs{
			AccessToken:  15 * time.Minute,
			RefreshToken: time.Hour,
			IDToken:      time.Hour,
		},
		Rotation: rotation,
		Logger:   logger.Nop(),
	})

	// Resource owner
	passwordHash, err := env.hasher.HashToBytes(testUserPassword)
	require.NoError(t, err)
	env.user = user.NewUser("bob", passwordHash)
	env.user.SetEmail("bob@example.com")
	require.NoError(t, env.users.Create(ctx, env.user))

	// Confidential client with offline access
	secretHash, err := env.hasher.Hash(testClientSecret)
	require.NoError(t, err)
	env.confidential = oauth.NewClient("web-app", "Web App", []string{"https://client.test/cb"}, []oauth.GrantType{
		oauth.GrantTypeAuthorizationCode,
		oauth.GrantTypePassword,
		oauth.GrantTypeClientCredentials,
		oauth.GrantTypeRefreshToken,
		oauth.GrantTypeTicket,
	}, true)
	env.confidential.SetSecret(secretHash)
	env.confidential.Scopes = []string{"openid", "profile", "email", "read", "write"}
	env.confidential.OfflineAccess = true
	require.NoError(t, env.clients.Create(ctx, env.confidential))

	// Public client, PKCE only, no refresh tokens
	env.public = oauth.NewClient("spa", "Single Page App", []string{"https://spa.test/cb"}, []oauth.GrantType{
		oauth.GrantTypeAuthorizationCode,
	}, false)
	env.public.Scopes = []string{"openid", "read"}
	require.NoError(t, env.clients.Create(ctx, env.public))

	return env
}

func (env *testEnv) verifyAccess(t *testing.T, tokenString string) *jws.AccessTokenClaims {
	t.Helper()
	claims, err := env.manager.Verify(tokenString, env.keys.KeyResolver(context.Background()), jws.VerifyPolicy{ExpectedType: jws.TypeAccess})
	require.NoError(t, err)
	return claims
}

func TestPasswordGrant(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{Rotate: true})

	resp, err := env.tokens.Issue(context.Background(), &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "read",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "read", resp.Scope)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Empty(t, resp.IDToken)

	claims := env.verifyAccess(t, resp.AccessToken)
	assert.Equal(t, env.user.ID.String(), claims.Subject)
	assert.Equal(t, "web-app", claims.ClientID)
	assert.Equal(t, "read", claims.Scope)
	assert.True(t, claims.ExpiresAt.Time.Equal(claims.IssuedAt.Time.Add(15*time.Minute)))
}

func TestPasswordGrantWrongPassword(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})

	_, err := env.tokens.Issue(context.Background(), &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, "invalid_grant", errors.AsOAuthError(err).Code)
}

func TestPasswordGrantDisabledUser(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	env.user.Status = user.StatusDisabled
	require.NoError(t, env.users.Update(ctx, env.user))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
	})
	assert.ErrorIs(t, err, errors.ErrUserInactive)
}

func TestPasswordGrantInvalidScope(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})

	_, err := env.tokens.Issue(context.Background(), &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "admin",
	})
	assert.ErrorIs(t, err, errors.ErrInvalidScope)
}

func TestClientCredentialsGrant(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})

	resp, err := env.tokens.Issue(context.Background(), &dto.TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Scope:        "read write",
	})
	require.NoError(t, err)

	// No resource owner means no refresh token.
	assert.Empty(t, resp.RefreshToken)

	claims := env.verifyAccess(t, resp.AccessToken)
	assert.Equal(t, "web-app", claims.Subject)
}

func TestClientAuthenticationFailures(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     "web-app",
		ClientSecret: "wrong-secret",
	})
	assert.Equal(t, "invalid_client", errors.AsOAuthError(err).Code)

	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType: "client_credentials",
		ClientID:  "no-such-client",
	})
	assert.Equal(t, "invalid_client", errors.AsOAuthError(err).Code)

	// Confidential client without a secret
	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType: "client_credentials",
		ClientID:  "web-app",
	})
	assert.Equal(t, "invalid_client", errors.AsOAuthError(err).Code)
}

func TestUnsupportedGrantType(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})

	_, err := env.tokens.Issue(context.Background(), &dto.TokenRequest{
		GrantType:    "implicit",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
	})
	assert.Equal(t, "unauthorized_client", errors.AsOAuthError(err).Code)
}

func TestGrantTypeNotAllowedForClient(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})

	// The public client only has authorization_code.
	_, err := env.tokens.Issue(context.Background(), &dto.TokenRequest{
		GrantType: "password",
		ClientID:  "spa",
		Username:  "bob",
		Password:  testUserPassword,
	})
	assert.ErrorIs(t, err, errors.ErrUnauthorizedClient)
}

func TestAuthorizationCodeGrant(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{Rotate: true})
	ctx := context.Background()

	code := oauth.NewAuthorizationCode(
		"code-1", "web-app", env.user.ID.String(),
		"https://client.test/cb", "openid read", "nonce-xyz",
		"", "", 10*time.Minute,
	)
	require.NoError(t, env.codes.Store(ctx, code))

	resp, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Code:         "code-1",
		RedirectURI:  "https://client.test/cb",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.IDToken) // openid scope was granted

	idClaims, err := env.manager.VerifyIDToken(resp.IDToken, env.keys.KeyResolver(ctx))
	require.NoError(t, err)
	assert.Equal(t, env.user.ID.String(), idClaims.Subject)
	assert.Equal(t, "nonce-xyz", idClaims.Nonce)
	assert.Equal(t, "bob@example.com", idClaims.Email)
}

func TestAuthorizationCodeSingleUse(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	code := oauth.NewAuthorizationCode("code-1", "web-app", env.user.ID.String(),
		"https://client.test/cb", "read", "", "", "", 10*time.Minute)
	require.NoError(t, env.codes.Store(ctx, code))

	req := &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Code:         "code-1",
		RedirectURI:  "https://client.test/cb",
	}

	_, err := env.tokens.Issue(ctx, req)
	require.NoError(t, err)

	_, err = env.tokens.Issue(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCodeConsumed)
	assert.Equal(t, "invalid_grant", errors.AsOAuthError(err).Code)
}

func TestAuthorizationCodeExpired(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	code := oauth.NewAuthorizationCode("code-1", "web-app", env.user.ID.String(),
		"https://client.test/cb", "read", "", "", "", -time.Minute)
	require.NoError(t, env.codes.Store(ctx, code))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Code:         "code-1",
		RedirectURI:  "https://client.test/cb",
	})
	assert.ErrorIs(t, err, errors.ErrCodeExpired)
	assert.Equal(t, "invalid_grant", errors.AsOAuthError(err).Code)
}

func TestAuthorizationCodeWrongClient(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	code := oauth.NewAuthorizationCode("code-1", "spa", env.user.ID.String(),
		"https://spa.test/cb", "read", "", "", "", 10*time.Minute)
	require.NoError(t, env.codes.Store(ctx, code))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Code:         "code-1",
		RedirectURI:  "https://spa.test/cb",
	})
	assert.Equal(t, "invalid_grant", errors.AsOAuthError(err).Code)
}

func TestAuthorizationCodePKCE(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := env.tokenGen.PKCECodeChallenge(verifier)

	code := oauth.NewAuthorizationCode("code-1", "spa", env.user.ID.String(),
		"https://spa.test/cb", "read", "", challenge, "S256", 10*time.Minute)
	require.NoError(t, env.codes.Store(ctx, code))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "spa",
		Code:         "code-1",
		RedirectURI:  "https://spa.test/cb",
		CodeVerifier: "wrong-verifier",
	})
	assert.ErrorIs(t, err, errors.ErrInvalidCodeVerifier)

	// The code is consumed even on a failed exchange.
	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "spa",
		Code:         "code-1",
		RedirectURI:  "https://spa.test/cb",
		CodeVerifier: verifier,
	})
	assert.ErrorIs(t, err, errors.ErrCodeConsumed)
}

func TestAuthorizationCodePKCESuccess(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := env.tokenGen.PKCECodeChallenge(verifier)

	code := oauth.NewAuthorizationCode("code-1", "spa", env.user.ID.String(),
		"https://spa.test/cb", "read", "", challenge, "S256", 10*time.Minute)
	require.NoError(t, env.codes.Store(ctx, code))

	resp, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "spa",
		Code:         "code-1",
		RedirectURI:  "https://spa.test/cb",
		CodeVerifier: verifier,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	// Public client without offline access gets no refresh token.
	assert.Empty(t, resp.RefreshToken)
}

func TestPublicClientWithoutPKCERejected(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	code := oauth.NewAuthorizationCode("code-1", "spa", env.user.ID.String(),
		"https://spa.test/cb", "read", "", "", "", 10*time.Minute)
	require.NoError(t, env.codes.Store(ctx, code))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:   "authorization_code",
		ClientID:    "spa",
		Code:        "code-1",
		RedirectURI: "https://spa.test/cb",
	})
	assert.Equal(t, "invalid_grant", errors.AsOAuthError(err).Code)
}

func TestRefreshTokenGrantRotation(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{Rotate: true})
	ctx := context.Background()

	initial, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "read write",
	})
	require.NoError(t, err)
	require.NotEmpty(t, initial.RefreshToken)

	refreshed, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, initial.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, initial.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, "read write", refreshed.Scope)

	// Without a grace window the superseded token dies immediately.
	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
	})
	assert.ErrorIs(t, err, errors.ErrRefreshTokenUsed)

	// The replacement works.
	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: refreshed.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestRefreshTokenGraceWindow(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{Rotate: true, GraceWindow: time.Minute})
	ctx := context.Background()

	initial, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "read",
	})
	require.NoError(t, err)

	rotated, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, initial.RefreshToken, rotated.RefreshToken)

	// A retried request inside the grace window still succeeds with the
	// superseded token; no second rotation happens, the token is handed
	// back unchanged.
	retried, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, retried.AccessToken)
	assert.Equal(t, initial.RefreshToken, retried.RefreshToken)

	// The replacement minted by the first rotation stays redeemable.
	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: rotated.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestRefreshTokenRejectedAfterGraceWindow(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{Rotate: true, GraceWindow: time.Minute})
	ctx := context.Background()

	initial, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "read",
	})
	require.NoError(t, err)

	// Rotate directly with a window that has already closed.
	hash := env.tokenGen.HashToken(initial.RefreshToken)
	require.NoError(t, env.refresh.MarkRotated(ctx, hash, time.Now().UTC().Add(-time.Second)))

	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
	})
	assert.ErrorIs(t, err, errors.ErrRefreshTokenUsed)
}

func TestRefreshTokenScopeNarrowing(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	initial, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "read write",
	})
	require.NoError(t, err)

	narrowed, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
		Scope:        "read",
	})
	require.NoError(t, err)
	assert.Equal(t, "read", narrowed.Scope)

	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
		Scope:        "read write admin",
	})
	assert.ErrorIs(t, err, errors.ErrInvalidScope)
}

func TestTicketGrant(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	rs := uma.NewResourceSet("photos", "owner-1", []string{"read", "write"})
	require.NoError(t, env.sets.Create(ctx, rs))

	ticket := uma.NewTicket("ticket-1", "web-app", rs.ID, []string{"read"}, 5*time.Minute)
	require.NoError(t, env.tickets.Store(ctx, ticket))

	resp, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    string(oauth.GrantTypeTicket),
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Ticket:       "ticket-1",
	})
	require.NoError(t, err)

	rpt, err := env.manager.VerifyRPT(resp.AccessToken, env.keys.KeyResolver(ctx))
	require.NoError(t, err)
	require.Len(t, rpt.Permissions, 1)
	assert.Equal(t, rs.ID.String(), rpt.Permissions[0].ResourceSetID)
	assert.Equal(t, []string{"read"}, rpt.Permissions[0].Scopes)
	assert.Equal(t, "owner-1", rpt.Subject)

	// Tickets are single-use.
	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    string(oauth.GrantTypeTicket),
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Ticket:       "ticket-1",
	})
	assert.ErrorIs(t, err, errors.ErrTicketConsumed)
}

func TestTicketGrantPolicyDenied(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	rs := uma.NewResourceSet("photos", "owner-1", []string{"read"})
	require.NoError(t, env.sets.Create(ctx, rs))

	// The ticket asks for a scope the resource never offered.
	ticket := uma.NewTicket("ticket-1", "web-app", rs.ID, []string{"delete"}, 5*time.Minute)
	require.NoError(t, env.tickets.Store(ctx, ticket))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    string(oauth.GrantTypeTicket),
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Ticket:       "ticket-1",
	})
	assert.ErrorIs(t, err, errors.ErrPolicyForbidden)
	assert.Equal(t, "access_denied", errors.AsOAuthError(err).Code)
}

func TestTicketGrantExpired(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	rs := uma.NewResourceSet("photos", "owner-1", []string{"read"})
	require.NoError(t, env.sets.Create(ctx, rs))

	ticket := uma.NewTicket("ticket-1", "web-app", rs.ID, []string{"read"}, -time.Minute)
	require.NoError(t, env.tickets.Store(ctx, ticket))

	_, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    string(oauth.GrantTypeTicket),
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Ticket:       "ticket-1",
	})
	assert.ErrorIs(t, err, errors.ErrTicketExpired)
}

func TestRevokeRefreshToken(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	initial, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "password",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Username:     "bob",
		Password:     testUserPassword,
		Scope:        "read",
	})
	require.NoError(t, err)

	require.NoError(t, env.tokens.Revoke(ctx, &dto.RevocationRequest{
		Token:        initial.RefreshToken,
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
	}))

	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "refresh_token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		RefreshToken: initial.RefreshToken,
	})
	assert.ErrorIs(t, err, errors.ErrTokenRevoked)
}

func TestRevokeAccessToken(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	ctx := context.Background()

	initial, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Scope:        "read",
	})
	require.NoError(t, err)

	require.NoError(t, env.tokens.Revoke(ctx, &dto.RevocationRequest{
		Token:        initial.AccessToken,
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
	}))

	claims := env.verifyAccess(t, initial.AccessToken)
	revoked, err := env.granted.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokeUnknownTokenSucceeds(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})

	err := env.tokens.Revoke(context.Background(), &dto.RevocationRequest{
		Token:        "garbage-token",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
	})
	assert.NoError(t, err)
}

func TestScopeSubset(t *testing.T) {
	assert.True(t, scopeSubset("read", "read write"))
	assert.True(t, scopeSubset("", "read"))
	assert.False(t, scopeSubset("admin", "read write"))
	assert.False(t, scopeSubset("read admin", "read"))
}
