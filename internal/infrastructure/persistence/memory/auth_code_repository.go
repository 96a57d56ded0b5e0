package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
)

// AuthorizationCodeRepository is an in-memory single-use code store.
// Redemption is serialized by the mutex, so exactly one concurrent
// caller wins.
type AuthorizationCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*oauth.AuthorizationCode
}

func NewAuthorizationCodeRepository() *AuthorizationCodeRepository {
	return &AuthorizationCodeRepository{codes: make(map[string]*oauth.AuthorizationCode)}
}

func (r *AuthorizationCodeRepository) Store(_ context.Context, code *oauth.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codes[code.Code]; exists {
		return apperrors.Wrap(apperrors.ErrInvalidRequest, "authorization code already exists")
	}
	cp := *code
	r.codes[code.Code] = &cp
	return nil
}

func (r *AuthorizationCodeRepository) Redeem(_ context.Context, code string) (*oauth.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.codes[code]
	if !ok {
		return nil, apperrors.ErrCodeNotFound
	}
	// Expiry wins over the consumed flag.
	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, apperrors.ErrCodeExpired
	}
	if stored.Consumed {
		return nil, apperrors.ErrCodeConsumed
	}
	stored.Consumed = true

	cp := *stored
	return &cp, nil
}

func (r *AuthorizationCodeRepository) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, code)
	return nil
}
