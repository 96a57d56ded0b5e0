package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainkeys "github.com/ruziba3vich/token-service/internal/domain/keys"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// SigningKeyRepository is an in-memory signing key store.
type SigningKeyRepository struct {
	mu   sync.RWMutex
	keys map[string]*domainkeys.SigningKey
}

func NewSigningKeyRepository() *SigningKeyRepository {
	return &SigningKeyRepository{keys: make(map[string]*domainkeys.SigningKey)}
}

func (r *SigningKeyRepository) Create(_ context.Context, key *domainkeys.SigningKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.keys[key.KID]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "key already exists")
	}
	cp := *key
	r.keys[key.KID] = &cp
	return nil
}

func (r *SigningKeyRepository) GetByKID(_ context.Context, kid string) (*domainkeys.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[kid]
	if !ok {
		return nil, apperrors.ErrKeyNotFound
	}
	cp := *key
	return &cp, nil
}

func (r *SigningKeyRepository) GetActive(_ context.Context) (*domainkeys.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	var newest *domainkeys.SigningKey
	for _, key := range r.keys {
		if !key.Active || !key.ExpiresAt.After(now) {
			continue
		}
		if newest == nil || key.CreatedAt.After(newest.CreatedAt) {
			newest = key
		}
	}
	if newest == nil {
		return nil, apperrors.ErrNoActiveKey
	}
	cp := *newest
	return &cp, nil
}

func (r *SigningKeyRepository) GetAll(_ context.Context) ([]*domainkeys.SigningKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now().UTC()
	var result []*domainkeys.SigningKey
	for _, key := range r.keys {
		if !key.ExpiresAt.After(now) {
			continue
		}
		cp := *key
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *SigningKeyRepository) SetActive(_ context.Context, kid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.keys[kid]
	if !ok {
		return apperrors.ErrKeyNotFound
	}
	for _, key := range r.keys {
		key.Active = false
	}
	target.Active = true
	return nil
}

func (r *SigningKeyRepository) Delete(_ context.Context, kid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, kid)
	return nil
}

func (r *SigningKeyRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var deleted int64
	for kid, key := range r.keys {
		if !key.ExpiresAt.After(now) {
			delete(r.keys, kid)
			deleted++
		}
	}
	return deleted, nil
}
