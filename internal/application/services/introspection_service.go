package services

import (
	"context"
	"strings"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/domain/token"
	"github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/jws"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// IntrospectionService implements RFC 7662 token introspection. An
// invalid, expired, or revoked token is reported as active=false; an
// error is returned only when the store itself fails.
type IntrospectionService struct {
	grantedTokens token.GrantedTokenRepository
	keyService    *KeyService
	jwsManager    *jws.Manager
	log           logger.Logger
}

// NewIntrospectionService creates an introspection service.
func NewIntrospectionService(grantedTokens token.GrantedTokenRepository, keyService *KeyService, jwsManager *jws.Manager, log logger.Logger) *IntrospectionService {
	return &IntrospectionService{
		grantedTokens: grantedTokens,
		keyService:    keyService,
		jwsManager:    jwsManager,
		log:           log.With(logger.Component("introspection_service")),
	}
}

var inactive = &dto.IntrospectionResponse{Active: false}

// Introspect validates the presented token and reports its claims.
func (s *IntrospectionService) Introspect(ctx context.Context, req *dto.IntrospectionRequest) (*dto.IntrospectionResponse, error) {
	claims, err := s.jwsManager.Verify(req.Token, s.keyService.KeyResolver(ctx), jws.VerifyPolicy{})
	if err != nil {
		// Verification failures (bad signature, expired, malformed)
		// are "not active", not errors.
		if errors.Is(err, errors.ErrVerificationFailure) || errors.Is(err, errors.ErrKeyNotFound) || errors.Is(err, errors.ErrKeyExpired) {
			return inactive, nil
		}
		return nil, err
	}

	revoked, err := s.grantedTokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return inactive, nil
	}

	resp := &dto.IntrospectionResponse{
		Active:    true,
		Scope:     claims.Scope,
		ClientID:  claims.ClientID,
		TokenType: "Bearer",
		Exp:       claims.ExpiresAt.Unix(),
		Iat:       claims.IssuedAt.Unix(),
		Sub:       claims.Subject,
		Aud:       strings.Join(claims.Audience, " "),
		Iss:       claims.Issuer,
		JTI:       claims.ID,
	}
	if claims.NotBefore != nil {
		resp.Nbf = claims.NotBefore.Unix()
	}
	return resp, nil
}
