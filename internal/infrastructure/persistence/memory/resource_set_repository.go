package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/domain/uma"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// ResourceSetRepository is an in-memory UMA resource set store.
type ResourceSetRepository struct {
	mu   sync.RWMutex
	sets map[uuid.UUID]*uma.ResourceSet
}

func NewResourceSetRepository() *ResourceSetRepository {
	return &ResourceSetRepository{sets: make(map[uuid.UUID]*uma.ResourceSet)}
}

func (r *ResourceSetRepository) Create(_ context.Context, rs *uma.ResourceSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[rs.ID]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "resource set already exists")
	}
	cp := *rs
	r.sets[rs.ID] = &cp
	return nil
}

func (r *ResourceSetRepository) GetByID(_ context.Context, id uuid.UUID) (*uma.ResourceSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.sets[id]
	if !ok {
		return nil, apperrors.ErrResourceSetNotFound
	}
	cp := *rs
	return &cp, nil
}

func (r *ResourceSetRepository) Update(_ context.Context, rs *uma.ResourceSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sets[rs.ID]; !ok {
		return apperrors.ErrResourceSetNotFound
	}
	cp := *rs
	r.sets[rs.ID] = &cp
	return nil
}

func (r *ResourceSetRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, id)
	return nil
}

func (r *ResourceSetRepository) List(_ context.Context, owner string, limit, offset int) ([]*uma.ResourceSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*uma.ResourceSet
	for _, rs := range r.sets {
		if rs.Owner != owner {
			continue
		}
		cp := *rs
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
