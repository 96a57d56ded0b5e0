package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/token"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// GrantedTokenRepository is an in-memory granted token cache with a
// revocation list.
type GrantedTokenRepository struct {
	mu      sync.RWMutex
	tokens  map[string]*token.GrantedToken
	revoked map[string]time.Time
}

func NewGrantedTokenRepository() *GrantedTokenRepository {
	return &GrantedTokenRepository{
		tokens:  make(map[string]*token.GrantedToken),
		revoked: make(map[string]time.Time),
	}
}

func (r *GrantedTokenRepository) Store(_ context.Context, gt *token.GrantedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *gt
	r.tokens[gt.JTI] = &cp
	return nil
}

func (r *GrantedTokenRepository) GetByJTI(_ context.Context, jti string) (*token.GrantedToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gt, ok := r.tokens[jti]
	if !ok || gt.IsExpired() {
		return nil, apperrors.ErrNotFound
	}
	cp := *gt
	return &cp, nil
}

func (r *GrantedTokenRepository) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	until, ok := r.revoked[jti]
	return ok && time.Now().UTC().Before(until), nil
}

func (r *GrantedTokenRepository) Revoke(_ context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !time.Now().UTC().Before(until) {
		return nil
	}
	r.revoked[jti] = until
	return nil
}
