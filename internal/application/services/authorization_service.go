package services

import (
	"context"
	"time"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	"github.com/ruziba3vich/token-service/internal/domain/user"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	"github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// AuthorizationService backs the authorization endpoint: it validates
// the request, authenticates the resource owner, and issues a
// single-use authorization code.
type AuthorizationService struct {
	clients oauth.ClientRepository
	users   user.Repository
	codes   oauth.AuthorizationCodeRepository

	tokenGen *crypto.TokenGenerator
	hasher   *crypto.Argon2Hasher
	codeTTL  time.Duration
	log      logger.Logger
}

// NewAuthorizationService creates an authorization service.
func NewAuthorizationService(
	clients oauth.ClientRepository,
	users user.Repository,
	codes oauth.AuthorizationCodeRepository,
	tokenGen *crypto.TokenGenerator,
	hasher *crypto.Argon2Hasher,
	codeTTL time.Duration,
	log logger.Logger,
) *AuthorizationService {
	return &AuthorizationService{
		clients:  clients,
		users:    users,
		codes:    codes,
		tokenGen: tokenGen,
		hasher:   hasher,
		codeTTL:  codeTTL,
		log:      log.With(logger.Component("authorization_service")),
	}
}

// Authorize validates the request and issues an authorization code
// bound to the client, redirect URI, scope, and PKCE challenge.
func (s *AuthorizationService) Authorize(ctx context.Context, req *dto.AuthorizeRequest) (*dto.AuthorizeResponse, error) {
	if req.ResponseType != "code" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "unsupported response_type")
	}

	client, err := s.clients.GetByClientID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.HasGrantType(oauth.GrantTypeAuthorizationCode) {
		return nil, errors.ErrUnauthorizedClient
	}
	if !client.ValidateRedirectURI(req.RedirectURI) {
		// Never redirect to an unregistered URI, even to report errors.
		return nil, errors.ErrInvalidRedirectURI
	}
	if !client.ValidateScopes(req.Scope) {
		return nil, errors.ErrInvalidScope
	}

	if req.CodeChallenge != "" {
		if req.CodeChallengeMethod == "" {
			req.CodeChallengeMethod = "plain"
		}
		if req.CodeChallengeMethod != "S256" && req.CodeChallengeMethod != "plain" {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "unsupported code_challenge_method")
		}
	} else if !client.IsConfidential {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "public clients must use PKCE")
	}

	u, err := s.authenticateOwner(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	codeValue, err := s.tokenGen.GenerateAuthorizationCode()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate authorization code")
	}

	code := oauth.NewAuthorizationCode(
		codeValue, client.ClientID, u.ID.String(),
		req.RedirectURI, req.Scope, req.Nonce,
		req.CodeChallenge, req.CodeChallengeMethod,
		s.codeTTL,
	)
	if err := s.codes.Store(ctx, code); err != nil {
		return nil, err
	}

	s.log.Info("authorization code issued",
		logger.ClientID(client.ClientID),
		logger.String("subject", code.Subject),
		logger.String("scope", req.Scope))

	return &dto.AuthorizeResponse{
		Code:        codeValue,
		State:       req.State,
		RedirectURI: req.RedirectURI,
	}, nil
}

func (s *AuthorizationService) authenticateOwner(ctx context.Context, username, password string) (*user.User, error) {
	if username == "" || password == "" {
		return nil, errors.ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyBytes(password, u.PasswordHash)
	if err != nil || !ok {
		return nil, errors.ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, errors.ErrUserInactive
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to record login time", logger.Error(err))
	}
	return u, nil
}
