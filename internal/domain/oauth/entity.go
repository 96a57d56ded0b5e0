package oauth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GrantType represents the OAuth 2.0 grant types supported.
type GrantType string

const (
	GrantTypeAuthorizationCode GrantType = "authorization_code"
	GrantTypePassword          GrantType = "password"
	GrantTypeClientCredentials GrantType = "client_credentials"
	GrantTypeRefreshToken      GrantType = "refresh_token"

	// GrantTypeTicket is the UMA grant: a permission ticket is redeemed
	// for an RPT.
	GrantTypeTicket GrantType = "urn:ietf:params:oauth:grant-type:uma-ticket"
)

// Client represents an OAuth client application.
// Clients can be confidential (with secret) or public (PKCE-only).
type Client struct {
	ID               uuid.UUID
	ClientID         string // Public client identifier
	ClientSecretHash string // Hashed secret for confidential clients (empty for public)
	Name             string // Human-readable name
	RedirectURIs     []string
	GrantTypes       []GrantType
	Scopes           []string // Allowed scopes for this client
	IsConfidential   bool     // True if client has a secret
	OfflineAccess    bool     // True if client may receive refresh tokens
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewClient creates a new OAuth client.
func NewClient(clientID, name string, redirectURIs []string, grantTypes []GrantType, isConfidential bool) *Client {
	now := time.Now().UTC()
	return &Client{
		ID:             uuid.New(),
		ClientID:       clientID,
		Name:           name,
		RedirectURIs:   redirectURIs,
		GrantTypes:     grantTypes,
		Scopes:         []string{"openid", "profile", "email"},
		IsConfidential: isConfidential,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SetSecret sets the hashed client secret.
func (c *Client) SetSecret(hashedSecret string) {
	c.ClientSecretHash = hashedSecret
	c.IsConfidential = true
	c.UpdatedAt = time.Now().UTC()
}

// ValidateRedirectURI checks if the given URI is in the allowed list.
func (c *Client) ValidateRedirectURI(uri string) bool {
	for _, allowed := range c.RedirectURIs {
		if allowed == uri {
			return true
		}
	}
	return false
}

// HasGrantType checks if the client supports the given grant type.
func (c *Client) HasGrantType(gt GrantType) bool {
	for _, allowed := range c.GrantTypes {
		if allowed == gt {
			return true
		}
	}
	return false
}

// HasScope checks if the client is allowed to request the given scope.
func (c *Client) HasScope(scope string) bool {
	for _, allowed := range c.Scopes {
		if allowed == scope {
			return true
		}
	}
	return false
}

// ValidateScopes checks if all requested scopes are allowed.
func (c *Client) ValidateScopes(scopes string) bool {
	if scopes == "" {
		return true
	}
	for _, s := range strings.Fields(scopes) {
		if !c.HasScope(s) {
			return false
		}
	}
	return true
}

// AuthorizationCode represents a single-use code for the authorization_code
// flow. Issued -> Consumed (terminal) or Issued -> Expired (terminal).
type AuthorizationCode struct {
	Code                string
	ClientID            string
	Subject             string
	RedirectURI         string
	Scope               string
	Nonce               string
	CodeChallenge       string // PKCE: stored challenge
	CodeChallengeMethod string // PKCE: S256 or plain
	Consumed            bool
	ExpiresAt           time.Time
	CreatedAt           time.Time
}

// NewAuthorizationCode creates a new authorization code.
func NewAuthorizationCode(
	code, clientID, subject,
	redirectURI, scope, nonce, codeChallenge, codeChallengeMethod string,
	ttl time.Duration,
) *AuthorizationCode {
	now := time.Now().UTC()
	return &AuthorizationCode{
		Code:                code,
		ClientID:            clientID,
		Subject:             subject,
		RedirectURI:         redirectURI,
		Scope:               scope,
		Nonce:               nonce,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
	}
}

// IsExpired checks if the authorization code has expired.
func (ac *AuthorizationCode) IsExpired() bool {
	return time.Now().UTC().After(ac.ExpiresAt)
}
