package uma

import (
	"context"

	"github.com/google/uuid"
)

// TicketRepository stores single-use permission tickets.
type TicketRepository interface {
	// Store saves a ticket with automatic expiration.
	Store(ctx context.Context, t *Ticket) error

	// Redeem atomically resolves a ticket. Exactly one concurrent
	// redemption wins; later attempts fail with ErrTicketConsumed.
	// Expiry takes precedence over the resolved flag.
	Redeem(ctx context.Context, ticketID string) (*Ticket, error)

	// Delete removes a ticket.
	Delete(ctx context.Context, ticketID string) error
}

// ResourceSetRepository persists registered resource sets.
type ResourceSetRepository interface {
	Create(ctx context.Context, rs *ResourceSet) error
	GetByID(ctx context.Context, id uuid.UUID) (*ResourceSet, error)
	Update(ctx context.Context, rs *ResourceSet) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, owner string, limit, offset int) ([]*ResourceSet, error)
}

// PolicyDecider is the external authorization policy engine consulted
// before an RPT is minted.
type PolicyDecider interface {
	// Authorize reports whether the requesting client may be granted the
	// ticket's scopes on the resource set.
	Authorize(ctx context.Context, clientID string, rs *ResourceSet, scopes []string) (bool, error)
}
