package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	"github.com/ruziba3vich/token-service/internal/domain/token"
	"github.com/ruziba3vich/token-service/internal/domain/uma"
	"github.com/ruziba3vich/token-service/internal/domain/user"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	"github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/jws"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// TokenTTLs groups the lifetimes the issuance engine works with.
type TokenTTLs struct {
	AccessToken  time.Duration
	RefreshToken time.Duration
	IDToken      time.Duration
}

// RotationPolicy controls refresh token rotation behavior.
type RotationPolicy struct {
	// Rotate replaces the refresh token on every redemption.
	Rotate bool

	// GraceWindow keeps a rotated token redeemable for this long, to
	// absorb retried requests from clients on flaky networks. Zero
	// means the old token dies the moment its successor is minted.
	GraceWindow time.Duration
}

// TokenService is the grant engine behind the token endpoint. It
// authenticates the client, dispatches on grant_type, and mints signed
// access tokens plus optional refresh and ID tokens.
type TokenService struct {
	clients       oauth.ClientRepository
	users         user.Repository
	codes         oauth.AuthorizationCodeRepository
	refreshTokens token.RefreshTokenRepository
	grantedTokens token.GrantedTokenRepository
	tickets       uma.TicketRepository
	resourceSets  uma.ResourceSetRepository
	policy        uma.PolicyDecider

	keyService *KeyService
	jwsManager *jws.Manager
	tokenGen   *crypto.TokenGenerator
	hasher     *crypto.Argon2Hasher

	ttls     TokenTTLs
	rotation RotationPolicy
	log      logger.Logger
}

// TokenServiceDeps bundles the collaborators of the issuance engine.
type TokenServiceDeps struct {
	Clients       oauth.ClientRepository
	Users         user.Repository
	Codes         oauth.AuthorizationCodeRepository
	RefreshTokens token.RefreshTokenRepository
	GrantedTokens token.GrantedTokenRepository
	Tickets       uma.TicketRepository
	ResourceSets  uma.ResourceSetRepository
	Policy        uma.PolicyDecider

	KeyService *KeyService
	JWSManager *jws.Manager
	TokenGen   *crypto.TokenGenerator
	Hasher     *crypto.Argon2Hasher

	TTLs     TokenTTLs
	Rotation RotationPolicy
	Logger   logger.Logger
}

// NewTokenService creates the issuance engine.
func NewTokenService(deps TokenServiceDeps) *TokenService {
	return &TokenService{
		clients:       deps.Clients,
		users:         deps.Users,
		codes:         deps.Codes,
		refreshTokens: deps.RefreshTokens,
		grantedTokens: deps.GrantedTokens,
		tickets:       deps.Tickets,
		resourceSets:  deps.ResourceSets,
		policy:        deps.Policy,
		keyService:    deps.KeyService,
		jwsManager:    deps.JWSManager,
		tokenGen:      deps.TokenGen,
		hasher:        deps.Hasher,
		ttls:          deps.TTLs,
		rotation:      deps.Rotation,
		log:           deps.Logger.With(logger.Component("token_service")),
	}
}

// Issue processes a token request: client authentication first, then
// grant dispatch. All failures map to RFC 6749 error codes at the
// transport layer.
func (s *TokenService) Issue(ctx context.Context, req *dto.TokenRequest) (*dto.TokenResponse, error) {
	grantType := oauth.GrantType(req.GrantType)

	client, err := s.authenticateClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		s.log.Warn("client authentication failed",
			logger.ClientID(req.ClientID),
			logger.GrantType(req.GrantType))
		return nil, err
	}

	if !client.HasGrantType(grantType) {
		return nil, errors.Wrap(errors.ErrUnauthorizedClient, string(grantType))
	}

	var granted *token.GrantedToken
	switch grantType {
	case oauth.GrantTypeAuthorizationCode:
		granted, err = s.grantAuthorizationCode(ctx, client, req)
	case oauth.GrantTypePassword:
		granted, err = s.grantPassword(ctx, client, req)
	case oauth.GrantTypeClientCredentials:
		granted, err = s.grantClientCredentials(ctx, client, req)
	case oauth.GrantTypeRefreshToken:
		granted, err = s.grantRefreshToken(ctx, client, req)
	case oauth.GrantTypeTicket:
		granted, err = s.grantTicket(ctx, client, req)
	default:
		return nil, errors.Wrap(errors.ErrUnsupportedGrantType, req.GrantType)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("token issued",
		logger.ClientID(client.ClientID),
		logger.GrantType(req.GrantType),
		logger.String("jti", granted.JTI),
		logger.String("scope", granted.Scope))

	return &dto.TokenResponse{
		AccessToken:  granted.AccessToken,
		TokenType:    granted.TokenType,
		ExpiresIn:    granted.ExpiresIn,
		RefreshToken: granted.RefreshToken,
		IDToken:      granted.IDToken,
		Scope:        granted.Scope,
	}, nil
}

// Revoke implements RFC 7009. Per the RFC, revoking an unknown or
// already-dead token is a success; only infrastructure failures error.
func (s *TokenService) Revoke(ctx context.Context, req *dto.RevocationRequest) error {
	client, err := s.authenticateClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return err
	}

	// Try as refresh token first; the hint is advisory only.
	hash := s.tokenGen.HashToken(req.Token)
	if rt, err := s.refreshTokens.GetByHash(ctx, hash); err == nil {
		if rt.ClientID != client.ClientID {
			// Not this client's token; do not disclose its existence.
			return nil
		}
		if err := s.refreshTokens.Revoke(ctx, hash); err != nil {
			return err
		}
		s.log.Info("refresh token revoked", logger.ClientID(client.ClientID))
		return nil
	}

	// Fall back to access token: verify the JWS and blocklist the jti.
	claims, err := s.jwsManager.Verify(req.Token, s.keyService.KeyResolver(ctx), jws.VerifyPolicy{})
	if err != nil {
		return nil
	}
	if claims.ClientID != client.ClientID {
		return nil
	}
	if err := s.grantedTokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	s.log.Info("access token revoked",
		logger.ClientID(client.ClientID),
		logger.String("jti", claims.ID))
	return nil
}

// --- grant handlers ---

func (s *TokenService) grantAuthorizationCode(ctx context.Context, client *oauth.Client, req *dto.TokenRequest) (*token.GrantedToken, error) {
	if req.Code == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "code is required")
	}

	code, err := s.codes.Redeem(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	// A code bound to another client is as good as stolen.
	if code.ClientID != client.ClientID {
		return nil, errors.Wrap(errors.ErrInvalidGrant, "code was issued to a different client")
	}
	if code.RedirectURI != "" && code.RedirectURI != req.RedirectURI {
		return nil, errors.Wrap(errors.ErrInvalidGrant, "redirect_uri mismatch")
	}

	if code.CodeChallenge != "" {
		if !s.tokenGen.VerifyPKCE(req.CodeVerifier, code.CodeChallenge, code.CodeChallengeMethod) {
			return nil, errors.ErrInvalidCodeVerifier
		}
	} else if !client.IsConfidential {
		// Public clients must have bound a challenge at authorization time.
		return nil, errors.Wrap(errors.ErrInvalidGrant, "missing PKCE challenge")
	}

	granted, err := s.mintAccessToken(ctx, client, code.Subject, code.Scope)
	if err != nil {
		return nil, err
	}

	if strings.Contains(" "+code.Scope+" ", " openid ") {
		idToken, err := s.mintIDToken(ctx, client, code.Subject, code.Nonce, code.CreatedAt)
		if err != nil {
			return nil, err
		}
		granted.IDToken = idToken
	}

	if client.OfflineAccess {
		if err := s.attachRefreshToken(ctx, granted); err != nil {
			return nil, err
		}
	}

	if err := s.grantedTokens.Store(ctx, granted); err != nil {
		return nil, err
	}
	return granted, nil
}

func (s *TokenService) grantPassword(ctx context.Context, client *oauth.Client, req *dto.TokenRequest) (*token.GrantedToken, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "username and password are required")
	}
	if !client.ValidateScopes(req.Scope) {
		return nil, errors.ErrInvalidScope
	}

	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyBytes(req.Password, u.PasswordHash)
	if err != nil || !ok {
		return nil, errors.ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, errors.ErrUserInactive
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to record login time", logger.Error(err))
	}

	granted, err := s.mintAccessToken(ctx, client, u.ID.String(), req.Scope)
	if err != nil {
		return nil, err
	}

	if client.OfflineAccess {
		if err := s.attachRefreshToken(ctx, granted); err != nil {
			return nil, err
		}
	}

	if err := s.grantedTokens.Store(ctx, granted); err != nil {
		return nil, err
	}
	return granted, nil
}

func (s *TokenService) grantClientCredentials(ctx context.Context, client *oauth.Client, req *dto.TokenRequest) (*token.GrantedToken, error) {
	if !client.IsConfidential {
		return nil, errors.Wrap(errors.ErrUnauthorizedClient, "public clients cannot use client_credentials")
	}
	if !client.ValidateScopes(req.Scope) {
		return nil, errors.ErrInvalidScope
	}

	// No resource owner: the client acts on its own behalf, and no
	// refresh token is issued (RFC 6749 §4.4.3).
	granted, err := s.mintAccessToken(ctx, client, client.ClientID, req.Scope)
	if err != nil {
		return nil, err
	}

	if err := s.grantedTokens.Store(ctx, granted); err != nil {
		return nil, err
	}
	return granted, nil
}

func (s *TokenService) grantRefreshToken(ctx context.Context, client *oauth.Client, req *dto.TokenRequest) (*token.GrantedToken, error) {
	if req.RefreshToken == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "refresh_token is required")
	}

	hash := s.tokenGen.HashToken(req.RefreshToken)
	rt, err := s.refreshTokens.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if rt.ClientID != client.ClientID {
		return nil, errors.Wrap(errors.ErrInvalidGrant, "refresh token was issued to a different client")
	}

	now := time.Now().UTC()
	if !rt.Usable(now) {
		if rt.RotatedAt != nil {
			return nil, errors.ErrRefreshTokenUsed
		}
		if rt.IsRevoked() {
			return nil, errors.ErrTokenRevoked
		}
		return nil, errors.ErrTokenExpired
	}

	// The new scope may only narrow the original grant.
	scope := rt.Scope
	if req.Scope != "" {
		if !scopeSubset(req.Scope, rt.Scope) {
			return nil, errors.ErrInvalidScope
		}
		scope = req.Scope
	}

	granted, err := s.mintAccessToken(ctx, client, rt.Subject, scope)
	if err != nil {
		return nil, err
	}

	switch {
	case s.rotation.Rotate && rt.RotatedAt == nil:
		if err := s.refreshTokens.MarkRotated(ctx, hash, now.Add(s.rotation.GraceWindow)); err != nil {
			return nil, err
		}
		// The replacement inherits the original scope, not the
		// narrowed one, so later refreshes are not pinned down.
		raw, err := s.tokenGen.GenerateRefreshToken()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate refresh token")
		}
		replacement := token.NewRefreshToken(s.tokenGen.HashToken(raw), client.ClientID, rt.Subject, rt.Scope, s.ttls.RefreshToken)
		if err := s.refreshTokens.Create(ctx, replacement); err != nil {
			return nil, err
		}
		granted.RefreshToken = raw
	default:
		// Rotation disabled, or a retry inside the grace window of an
		// already-rotated token: the presented token stays valid as-is.
		granted.RefreshToken = req.RefreshToken
	}

	if err := s.grantedTokens.Store(ctx, granted); err != nil {
		return nil, err
	}
	return granted, nil
}

func (s *TokenService) grantTicket(ctx context.Context, client *oauth.Client, req *dto.TokenRequest) (*token.GrantedToken, error) {
	if req.Ticket == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "ticket is required")
	}

	t, err := s.tickets.Redeem(ctx, req.Ticket)
	if err != nil {
		return nil, err
	}
	if t.ClientID != client.ClientID {
		return nil, errors.Wrap(errors.ErrInvalidGrant, "ticket was issued to a different client")
	}

	rs, err := s.resourceSets.GetByID(ctx, t.ResourceSetID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policy.Authorize(ctx, client.ClientID, rs, t.RequestedScopes)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.ErrPolicyForbidden
	}

	granted, err := s.mintRPT(ctx, client, rs, t.RequestedScopes)
	if err != nil {
		return nil, err
	}

	if err := s.grantedTokens.Store(ctx, granted); err != nil {
		return nil, err
	}
	return granted, nil
}

// --- minting helpers ---

func (s *TokenService) mintAccessToken(ctx context.Context, client *oauth.Client, subject, scope string) (*token.GrantedToken, error) {
	key, err := s.keyService.ActiveKey(ctx)
	if err != nil {
		return nil, err
	}

	claims := jws.NewAccessClaims(s.jwsManager.Issuer(), subject, []string{client.ClientID}, client.ClientID, scope, s.ttls.AccessToken)
	signed, err := s.jwsManager.Sign(key, claims)
	if err != nil {
		return nil, err
	}

	return &token.GrantedToken{
		JTI:         claims.ID,
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ttls.AccessToken.Seconds()),
		Scope:       scope,
		ClientID:    client.ClientID,
		Subject:     subject,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) mintIDToken(ctx context.Context, client *oauth.Client, subject, nonce string, authTime time.Time) (string, error) {
	key, err := s.keyService.ActiveKey(ctx)
	if err != nil {
		return "", err
	}

	email := ""
	if uid, parseErr := parseSubject(subject); parseErr == nil {
		if u, err := s.users.GetByID(ctx, uid); err == nil && u.Email != nil {
			email = *u.Email
		}
	}

	claims := jws.NewIDClaims(s.jwsManager.Issuer(), subject, client.ClientID, email, email != "", nonce, authTime, s.ttls.IDToken)
	return s.jwsManager.Sign(key, claims)
}

func (s *TokenService) mintRPT(ctx context.Context, client *oauth.Client, rs *uma.ResourceSet, scopes []string) (*token.GrantedToken, error) {
	key, err := s.keyService.ActiveKey(ctx)
	if err != nil {
		return nil, err
	}

	permissions := []uma.Permission{{
		ResourceSetID: rs.ID.String(),
		Scopes:        scopes,
	}}

	claims := jws.NewRPTClaims(s.jwsManager.Issuer(), rs.Owner, []string{client.ClientID}, client.ClientID, permissions, s.ttls.AccessToken)
	signed, err := s.jwsManager.Sign(key, claims)
	if err != nil {
		return nil, err
	}

	return &token.GrantedToken{
		JTI:         claims.ID,
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ttls.AccessToken.Seconds()),
		Scope:       strings.Join(scopes, " "),
		ClientID:    client.ClientID,
		Subject:     rs.Owner,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) attachRefreshToken(ctx context.Context, granted *token.GrantedToken) error {
	raw, err := s.tokenGen.GenerateRefreshToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate refresh token")
	}

	rt := token.NewRefreshToken(s.tokenGen.HashToken(raw), granted.ClientID, granted.Subject, granted.Scope, s.ttls.RefreshToken)
	if err := s.refreshTokens.Create(ctx, rt); err != nil {
		return err
	}

	granted.RefreshToken = raw
	return nil
}

// authenticateClient verifies client identity. Confidential clients must
// present a valid secret; public clients must not present one.
func (s *TokenService) authenticateClient(ctx context.Context, clientID, clientSecret string) (*oauth.Client, error) {
	if clientID == "" {
		return nil, errors.Wrap(errors.ErrInvalidClient, "client_id is required")
	}

	client, err := s.clients.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, errors.ErrClientNotFound) {
			return nil, errors.ErrInvalidClient
		}
		return nil, err
	}

	if client.IsConfidential {
		if clientSecret == "" {
			return nil, errors.Wrap(errors.ErrInvalidClient, "client secret is required")
		}
		ok, err := s.hasher.Verify(clientSecret, client.ClientSecretHash)
		if err != nil || !ok {
			return nil, errors.ErrInvalidClientSecret
		}
	} else if clientSecret != "" {
		return nil, errors.Wrap(errors.ErrInvalidClient, "public client must not send a secret")
	}

	return client, nil
}

// parseSubject maps a sub claim back to a user id. Client-credentials
// subjects are client ids and fail the parse, which callers treat as
// "no user record".
func parseSubject(subject string) (uuid.UUID, error) {
	return uuid.Parse(subject)
}

// scopeSubset reports whether every scope in requested appears in granted.
func scopeSubset(requested, granted string) bool {
	allowed := make(map[string]struct{})
	for _, s := range strings.Fields(granted) {
		allowed[s] = struct{}{}
	}
	for _, s := range strings.Fields(requested) {
		if _, ok := allowed[s]; !ok {
			return false
		}
	}
	return true
}
