package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/uma"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

const ticketPrefix = "uma_ticket:"

// TicketRepository stores UMA permission tickets in Redis. Tickets share
// the single-use redemption semantics of authorization codes.
type TicketRepository struct {
	client *Client
}

func NewTicketRepository(client *Client) *TicketRepository {
	return &TicketRepository{client: client}
}

type ticketData struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	ResourceSetID   string    `json:"resource_set_id"`
	RequestedScopes []string  `json:"requested_scopes"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store saves a ticket with automatic expiration.
func (r *TicketRepository) Store(ctx context.Context, t *uma.Ticket) error {
	key := ticketPrefix + t.ID

	data := ticketData{
		ID:              t.ID,
		ClientID:        t.ClientID,
		ResourceSetID:   t.ResourceSetID.String(),
		RequestedScopes: t.RequestedScopes,
		ExpiresAt:       t.ExpiresAt,
		CreatedAt:       t.CreatedAt,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal ticket")
	}

	if time.Until(t.ExpiresAt) <= 0 {
		return apperrors.ErrTicketExpired
	}

	created, err := r.client.HSetNX(ctx, key, "data", jsonData)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if !created {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "ticket id collision")
	}

	if err := r.client.HSet(ctx, key, "consumed", "0", "exp", t.ExpiresAt.Unix()); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	if err := r.client.ExpireAt(ctx, key, t.ExpiresAt.Add(redemptionRetention)); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	return nil
}

// Redeem atomically resolves a ticket.
func (r *TicketRepository) Redeem(ctx context.Context, ticketID string) (*uma.Ticket, error) {
	key := ticketPrefix + ticketID

	raw, err := r.client.EvalScript(ctx, redeemScript, []string{key}, time.Now().UTC().Unix())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	status, payload := redeemResult(raw)
	switch status {
	case redeemOK:
	case redeemExpired:
		return nil, apperrors.ErrTicketExpired
	case redeemConsumed:
		return nil, apperrors.ErrTicketConsumed
	default:
		return nil, apperrors.ErrTicketNotFound
	}

	var data ticketData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal ticket")
	}

	resourceSetID, err := uuid.Parse(data.ResourceSetID)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid resource_set_id in ticket")
	}

	return &uma.Ticket{
		ID:              data.ID,
		ClientID:        data.ClientID,
		ResourceSetID:   resourceSetID,
		RequestedScopes: data.RequestedScopes,
		Resolved:        true,
		ExpiresAt:       data.ExpiresAt,
		CreatedAt:       data.CreatedAt,
	}, nil
}

// Delete removes a ticket.
func (r *TicketRepository) Delete(ctx context.Context, ticketID string) error {
	if err := r.client.Delete(ctx, ticketPrefix+ticketID); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}
	return nil
}
