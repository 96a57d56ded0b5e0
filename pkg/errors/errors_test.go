package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsOAuthErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"invalid client", ErrInvalidClient, "invalid_client"},
		{"client not found", ErrClientNotFound, "invalid_client"},
		{"bad secret", ErrInvalidClientSecret, "invalid_client"},
		{"consumed code", ErrCodeConsumed, "invalid_grant"},
		{"expired code", ErrCodeExpired, "invalid_grant"},
		{"used refresh token", ErrRefreshTokenUsed, "invalid_grant"},
		{"revoked token", ErrTokenRevoked, "invalid_grant"},
		{"bad verifier", ErrInvalidCodeVerifier, "invalid_grant"},
		{"inactive user", ErrUserInactive, "invalid_grant"},
		{"consumed ticket", ErrTicketConsumed, "invalid_grant"},
		{"bad scope", ErrInvalidScope, "invalid_scope"},
		{"grant not allowed", ErrUnauthorizedClient, "unauthorized_client"},
		{"unknown grant", ErrUnsupportedGrantType, "unsupported_grant_type"},
		{"policy denied", ErrPolicyForbidden, "access_denied"},
		{"store down", ErrStoreUnavailable, "server_error"},
		{"anything else", ErrInternal, "server_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, AsOAuthError(tc.err).Code)
		})
	}
}

func TestAsOAuthErrorSeesThroughWrapping(t *testing.T) {
	wrapped := Wrap(Wrap(ErrCodeConsumed, "redeeming"), "token endpoint")
	assert.Equal(t, "invalid_grant", AsOAuthError(wrapped).Code)
}

func TestAsOAuthErrorPassesThroughOAuthError(t *testing.T) {
	oe := NewOAuthError("invalid_request", "missing code").WithState("xyz")
	got := AsOAuthError(oe)
	assert.Same(t, oe, got)
	assert.Equal(t, "xyz", got.State)
}

func TestAsOAuthErrorHidesDetail(t *testing.T) {
	got := AsOAuthError(Wrap(ErrStoreUnavailable, "pg: connection refused to 10.0.0.5"))
	assert.NotContains(t, got.Description, "10.0.0.5")
}

func TestOAuthErrorString(t *testing.T) {
	assert.Equal(t, "invalid_grant: gone", NewOAuthError("invalid_grant", "gone").Error())
	assert.Equal(t, "invalid_grant", NewOAuthError("invalid_grant", "").Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
}
