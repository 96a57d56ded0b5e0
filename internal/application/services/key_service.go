package services

import (
	"context"
	"sync"
	"time"

	"github.com/ruziba3vich/token-service/internal/domain/keys"
	apperrors "github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/jws"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// KeyService manages the signing key lifecycle: initial provisioning,
// scheduled rotation, expired key cleanup, and the JWKS document.
type KeyService struct {
	repo      keys.Repository
	generator keys.Generator
	algorithm keys.Algorithm
	log       logger.Logger

	// JWKS is rebuilt on rotation; reads are frequent, writes rare.
	mu         sync.RWMutex
	cachedJWKS *keys.JWKS
}

// NewKeyService creates a key service signing with the given algorithm.
func NewKeyService(repo keys.Repository, generator keys.Generator, algorithm keys.Algorithm, log logger.Logger) *KeyService {
	return &KeyService{
		repo:      repo,
		generator: generator,
		algorithm: algorithm,
		log:       log.With(logger.Component("key_service")),
	}
}

// Initialize ensures an active signing key exists, generating one on
// first boot.
func (s *KeyService) Initialize(ctx context.Context) error {
	_, err := s.repo.GetActive(ctx)
	if err == nil {
		return nil
	}
	if !apperrors.Is(err, apperrors.ErrNoActiveKey) {
		return err
	}

	s.log.Info("no active signing key found, generating initial key",
		logger.String("algorithm", string(s.algorithm)))

	_, err = s.RotateKey(ctx)
	return err
}

// ActiveKey returns the key currently used for signing.
func (s *KeyService) ActiveKey(ctx context.Context) (*keys.SigningKey, error) {
	return s.repo.GetActive(ctx)
}

// RotateKey generates a fresh key and promotes it to active. Superseded
// keys stay in the store until expiry so previously issued tokens keep
// verifying.
func (s *KeyService) RotateKey(ctx context.Context) (*keys.SigningKey, error) {
	key, err := s.generator.Generate(s.algorithm)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate signing key")
	}

	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, key.KID); err != nil {
		return nil, err
	}

	s.invalidateJWKS()
	s.log.Info("signing key rotated",
		logger.String("kid", key.KID),
		logger.String("algorithm", string(key.Algorithm)),
		logger.Time("expires_at", key.ExpiresAt))

	return key, nil
}

// CleanupExpiredKeys removes keys past their validity period.
func (s *KeyService) CleanupExpiredKeys(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.invalidateJWKS()
		s.log.Info("expired signing keys removed", logger.Int64("count", deleted))
	}
	return deleted, nil
}

// GetJWKS returns the published key set. Contains every non-expired
// asymmetric key so rotated-out keys keep verifying.
func (s *KeyService) GetJWKS(ctx context.Context) (*keys.JWKS, error) {
	s.mu.RLock()
	cached := s.cachedJWKS
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	jwks := jws.GenerateJWKS(all)

	s.mu.Lock()
	s.cachedJWKS = &jwks
	s.mu.Unlock()

	return &jwks, nil
}

// KeyResolver returns a jws.KeyResolver backed by the repository. Only
// valid (non-expired) keys resolve.
func (s *KeyService) KeyResolver(ctx context.Context) jws.KeyResolver {
	return func(kid string) (any, error) {
		key, err := s.repo.GetByKID(ctx, kid)
		if err != nil {
			return nil, err
		}
		if !key.IsValid() {
			return nil, apperrors.ErrKeyExpired
		}
		return key.VerifierMaterial(), nil
	}
}

// StartRotationScheduler rotates and cleans up on the given interval
// until the context is cancelled.
func (s *KeyService) StartRotationScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RotateKey(ctx); err != nil {
					s.log.Error("scheduled key rotation failed", logger.Error(err))
				}
				if _, err := s.CleanupExpiredKeys(ctx); err != nil {
					s.log.Error("key cleanup failed", logger.Error(err))
				}
			}
		}
	}()
}

func (s *KeyService) invalidateJWKS() {
	s.mu.Lock()
	s.cachedJWKS = nil
	s.mu.Unlock()
}
