package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/token"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// RefreshTokenRepository is an in-memory refresh token store.
type RefreshTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*token.RefreshToken
}

func NewRefreshTokenRepository() *RefreshTokenRepository {
	return &RefreshTokenRepository{tokens: make(map[string]*token.RefreshToken)}
}

func (r *RefreshTokenRepository) Create(_ context.Context, rt *token.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[rt.TokenHash]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "refresh token already exists")
	}
	cp := *rt
	r.tokens[rt.TokenHash] = &cp
	return nil
}

func (r *RefreshTokenRepository) GetByHash(_ context.Context, tokenHash string) (*token.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[tokenHash]
	if !ok {
		return nil, apperrors.ErrInvalidGrant
	}
	cp := *rt
	return &cp, nil
}

func (r *RefreshTokenRepository) MarkRotated(_ context.Context, tokenHash string, graceUntil time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[tokenHash]
	if !ok {
		return apperrors.ErrInvalidGrant
	}
	if rt.RotatedAt != nil {
		return apperrors.ErrRefreshTokenUsed
	}
	now := time.Now().UTC()
	rt.RotatedAt = &now
	rt.GraceUntil = &graceUntil
	return nil
}

func (r *RefreshTokenRepository) Revoke(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[tokenHash]
	if !ok {
		return nil
	}
	if rt.RevokedAt == nil {
		now := time.Now().UTC()
		rt.RevokedAt = &now
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var deleted int64
	for hash, rt := range r.tokens {
		if !now.Before(rt.ExpiresAt) {
			delete(r.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}
