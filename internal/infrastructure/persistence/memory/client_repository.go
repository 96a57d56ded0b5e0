package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// ClientRepository is an in-memory OAuth client store.
type ClientRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*oauth.Client
	byClient map[string]uuid.UUID
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		byID:     make(map[uuid.UUID]*oauth.Client),
		byClient: make(map[string]uuid.UUID),
	}
}

func (r *ClientRepository) Create(_ context.Context, client *oauth.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byClient[client.ClientID]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "client already exists")
	}
	cp := *client
	r.byID[client.ID] = &cp
	r.byClient[client.ClientID] = client.ID
	return nil
}

func (r *ClientRepository) GetByID(_ context.Context, id uuid.UUID) (*oauth.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrClientNotFound
	}
	cp := *client
	return &cp, nil
}

func (r *ClientRepository) GetByClientID(_ context.Context, clientID string) (*oauth.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byClient[clientID]
	if !ok {
		return nil, apperrors.ErrClientNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *ClientRepository) Update(_ context.Context, client *oauth.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[client.ID]; !ok {
		return apperrors.ErrClientNotFound
	}
	cp := *client
	r.byID[client.ID] = &cp
	r.byClient[client.ClientID] = client.ID
	return nil
}

func (r *ClientRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.byID[id]; ok {
		delete(r.byClient, client.ClientID)
		delete(r.byID, id)
	}
	return nil
}

func (r *ClientRepository) List(_ context.Context, limit, offset int) ([]*oauth.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*oauth.Client, 0, len(r.byID))
	for _, client := range r.byID {
		cp := *client
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
