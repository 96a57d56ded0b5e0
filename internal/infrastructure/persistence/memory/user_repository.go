package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/user"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// UserRepository is an in-memory resource owner store.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*user.User
	byUsername map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[uuid.UUID]*user.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[u.Username]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "user already exists")
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return nil
}
