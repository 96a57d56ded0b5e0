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

func newAuthorization(env *testEnv) *AuthorizationService {
	return NewAuthorizationService(env.clients, env.users, env.codes, env.tokenGen, env.hasher, 10*time.Minute, logger.Nop())
}

func validAuthorizeRequest() *dto.AuthorizeRequest {
	return &dto.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     "web-app",
		RedirectURI:  "https://client.test/cb",
		Scope:        "openid read",
		State:        "xyz",
		Nonce:        "n-1",
		Username:     "bob",
		Password:     testUserPassword,
	}
}

func TestAuthorizeIssuesRedeemableCode(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)
	ctx := context.Background()

	resp, err := svc.Authorize(ctx, validAuthorizeRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Code)
	assert.Equal(t, "xyz", resp.State)
	assert.Equal(t, "https://client.test/cb", resp.RedirectURI)

	// The code round-trips through the token endpoint.
	tokenResp, err := env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "web-app",
		ClientSecret: testClientSecret,
		Code:         resp.Code,
		RedirectURI:  "https://client.test/cb",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokenResp.AccessToken)
	assert.NotEmpty(t, tokenResp.IDToken)
}

func TestAuthorizeRejectsUnknownResponseType(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)

	req := validAuthorizeRequest()
	req.ResponseType = "token"

	_, err := svc.Authorize(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestAuthorizeRejectsUnregisteredRedirectURI(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)

	req := validAuthorizeRequest()
	req.RedirectURI = "https://evil.test/cb"

	_, err := svc.Authorize(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidRedirectURI)
}

func TestAuthorizeRejectsUnknownScope(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)

	req := validAuthorizeRequest()
	req.Scope = "openid admin"

	_, err := svc.Authorize(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidScope)
}

func TestAuthorizePublicClientRequiresPKCE(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)

	req := validAuthorizeRequest()
	req.ClientID = "spa"
	req.RedirectURI = "https://spa.test/cb"
	req.Scope = "openid read"

	_, err := svc.Authorize(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestAuthorizePKCEMethodDefaultsToPlain(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)
	ctx := context.Background()

	req := validAuthorizeRequest()
	req.ClientID = "spa"
	req.RedirectURI = "https://spa.test/cb"
	req.Scope = "read"
	req.CodeChallenge = "plain-verifier-value-that-is-long-enough"

	resp, err := svc.Authorize(ctx, req)
	require.NoError(t, err)

	_, err = env.tokens.Issue(ctx, &dto.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "spa",
		Code:         resp.Code,
		RedirectURI:  "https://spa.test/cb",
		CodeVerifier: "plain-verifier-value-that-is-long-enough",
	})
	assert.NoError(t, err)
}

func TestAuthorizeRejectsUnknownChallengeMethod(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)

	req := validAuthorizeRequest()
	req.CodeChallenge = "challenge"
	req.CodeChallengeMethod = "S384"

	_, err := svc.Authorize(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestAuthorizeWrongOwnerCredentials(t *testing.T) {
	env := newTestEnv(t, RotationPolicy{})
	svc := newAuthorization(env)

	req := validAuthorizeRequest()
	req.Password = "wrong"

	_, err := svc.Authorize(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}
