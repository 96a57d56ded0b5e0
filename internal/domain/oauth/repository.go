package oauth

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository defines the interface for OAuth client persistence.
type ClientRepository interface {
	// Create persists a new OAuth client.
	Create(ctx context.Context, client *Client) error

	// GetByID retrieves a client by internal ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// GetByClientID retrieves a client by public client_id.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)

	// Update persists changes to an existing client.
	Update(ctx context.Context, client *Client) error

	// Delete removes a client.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves all clients with pagination.
	List(ctx context.Context, limit, offset int) ([]*Client, error)
}

// AuthorizationCodeRepository defines the interface for authorization code
// storage. Codes are short-lived and single-use.
type AuthorizationCodeRepository interface {
	// Store saves an authorization code with automatic expiration.
	Store(ctx context.Context, code *AuthorizationCode) error

	// Redeem atomically consumes a code. Concurrent redemptions of the
	// same code yield exactly one winner; later attempts fail with
	// ErrCodeConsumed. Expiry takes precedence: a code that is both
	// expired and consumed fails with ErrCodeExpired.
	Redeem(ctx context.Context, code string) (*AuthorizationCode, error)

	// Delete removes an authorization code (revocation).
	Delete(ctx context.Context, code string) error
}
