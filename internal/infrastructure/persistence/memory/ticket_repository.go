package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/uma"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// TicketRepository is an in-memory single-use permission ticket store.
type TicketRepository struct {
	mu      sync.Mutex
	tickets map[string]*uma.Ticket
}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{tickets: make(map[string]*uma.Ticket)}
}

func (r *TicketRepository) Store(_ context.Context, t *uma.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[t.ID]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "ticket already exists")
	}
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *TicketRepository) Redeem(_ context.Context, ticketID string) (*uma.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[ticketID]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTicketExpired
	}
	if stored.Resolved {
		return nil, apperrors.ErrTicketConsumed
	}
	stored.Resolved = true

	cp := *stored
	return &cp, nil
}

func (r *TicketRepository) Delete(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tickets, ticketID)
	return nil
}
