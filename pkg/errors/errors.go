package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these map to specific OAuth error responses
var (
	// Resource owner errors
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is not active")

	// OAuth errors (RFC 6749 compliant)
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrUnauthorizedClient   = errors.New("unauthorized_client")
	ErrAccessDenied         = errors.New("access_denied")
	ErrInvalidScope         = errors.New("invalid_scope")
	ErrServerError          = errors.New("server_error")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")

	// Token errors
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrRefreshTokenUsed = errors.New("refresh token already used")

	// Code / ticket redemption errors
	ErrCodeNotFound    = errors.New("authorization code not found")
	ErrCodeConsumed    = errors.New("authorization code already consumed")
	ErrCodeExpired     = errors.New("authorization code expired")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrTicketConsumed  = errors.New("ticket already resolved")
	ErrTicketExpired   = errors.New("ticket expired")
	ErrPolicyForbidden = errors.New("authorization policy denied the request")

	// Client errors
	ErrClientNotFound      = errors.New("client not found")
	ErrInvalidRedirectURI  = errors.New("invalid redirect_uri")
	ErrInvalidClientSecret = errors.New("invalid client secret")

	// PKCE errors
	ErrInvalidCodeVerifier = errors.New("invalid code_verifier")

	// Key / signature errors
	ErrKeyNotFound          = errors.New("signing key not found")
	ErrNoActiveKey          = errors.New("no active signing key")
	ErrKeyExpired           = errors.New("signing key expired")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrVerificationFailure  = errors.New("token verification failed")

	// Store errors - distinguishable from protocol errors so callers can retry
	ErrStoreUnavailable = errors.New("store unavailable")

	// UMA errors
	ErrResourceSetNotFound = errors.New("resource set not found")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// OAuthError represents an OAuth 2.0 error response.
type OAuthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
	State       string `json:"state,omitempty"`
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code
}

// NewOAuthError creates a new OAuth error.
func NewOAuthError(code, description string) *OAuthError {
	return &OAuthError{
		Code:        code,
		Description: description,
	}
}

// WithState adds state parameter to the error.
func (e *OAuthError) WithState(state string) *OAuthError {
	e.State = state
	return e
}

// AsOAuthError maps a domain error to its RFC 6749 wire shape without leaking
// internal diagnostic detail. Store failures map to server_error so callers
// can distinguish a retryable infrastructure problem from a terminal
// protocol error.
func AsOAuthError(err error) *OAuthError {
	var oe *OAuthError
	if errors.As(err, &oe) {
		return oe
	}

	switch {
	case Is(err, ErrInvalidClient), Is(err, ErrClientNotFound), Is(err, ErrInvalidClientSecret):
		return NewOAuthError("invalid_client", "client authentication failed")
	case Is(err, ErrInvalidGrant),
		Is(err, ErrCodeNotFound), Is(err, ErrCodeConsumed), Is(err, ErrCodeExpired),
		Is(err, ErrTicketNotFound), Is(err, ErrTicketConsumed), Is(err, ErrTicketExpired),
		Is(err, ErrRefreshTokenUsed), Is(err, ErrTokenRevoked), Is(err, ErrTokenExpired),
		Is(err, ErrInvalidCredentials), Is(err, ErrInvalidCodeVerifier), Is(err, ErrUserInactive):
		return NewOAuthError("invalid_grant", "grant is invalid, expired, or already used")
	case Is(err, ErrInvalidScope):
		return NewOAuthError("invalid_scope", "requested scope not allowed")
	case Is(err, ErrUnauthorizedClient):
		return NewOAuthError("unauthorized_client", "grant type not permitted for this client")
	case Is(err, ErrUnsupportedGrantType):
		return NewOAuthError("unsupported_grant_type", "grant type not supported")
	case Is(err, ErrUnsupportedAlgorithm):
		return NewOAuthError("server_error", "unsupported signing algorithm")
	case Is(err, ErrAccessDenied), Is(err, ErrPolicyForbidden):
		return NewOAuthError("access_denied", "authorization policy denied the request")
	case Is(err, ErrStoreUnavailable):
		return NewOAuthError("server_error", "temporarily unavailable")
	default:
		return NewOAuthError("server_error", "internal error")
	}
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
