package application

import (
	"github.com/ruziba3vich/token-service/config"
	"github.com/ruziba3vich/token-service/internal/application/services"
	"github.com/ruziba3vich/token-service/internal/domain/keys"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	"github.com/ruziba3vich/token-service/internal/infrastructure/persistence"
	"github.com/ruziba3vich/token-service/pkg/jws"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// Services holds all application services.
type Services struct {
	Token         *services.TokenService
	Authorization *services.AuthorizationService
	Introspection *services.IntrospectionService
	UMA           *services.UMAService
	Key           *services.KeyService
}

// Dependencies holds shared dependencies for services.
type Dependencies struct {
	Hasher     *crypto.Argon2Hasher
	TokenGen   *crypto.TokenGenerator
	KeyGen     *crypto.KeyGenerator
	JWSManager *jws.Manager
}

// NewDependencies creates shared dependencies from config.
func NewDependencies(cfg *config.Config) *Dependencies {
	return &Dependencies{
		Hasher: crypto.NewArgon2Hasher(
			cfg.Auth.Argon2Memory,
			cfg.Auth.Argon2Iterations,
			cfg.Auth.Argon2Parallelism,
			cfg.Auth.Argon2SaltLength,
			cfg.Auth.Argon2KeyLength,
		),
		TokenGen:   crypto.NewTokenGenerator(),
		KeyGen:     crypto.NewKeyGenerator(2048, cfg.JWT.KeyValidityPeriod),
		JWSManager: jws.NewManager(cfg.JWT.Issuer),
	}
}

// NewServices creates all application services.
func NewServices(repos *persistence.Repositories, deps *Dependencies, cfg *config.Config, log logger.Logger) *Services {
	keyService := services.NewKeyService(repos.Key, deps.KeyGen, keys.Algorithm(cfg.JWT.SigningAlgorithm), log)

	tokenService := services.NewTokenService(services.TokenServiceDeps{
		Clients:       repos.Client,
		Users:         repos.User,
		Codes:         repos.AuthCode,
		RefreshTokens: repos.RefreshToken,
		GrantedTokens: repos.GrantedToken,
		Tickets:       repos.Ticket,
		ResourceSets:  repos.ResourceSet,
		Policy:        services.NewScopePolicyDecider(),
		KeyService:    keyService,
		JWSManager:    deps.JWSManager,
		TokenGen:      deps.TokenGen,
		Hasher:        deps.Hasher,
		TTLs: services.TokenTTLs{
			AccessToken:  cfg.JWT.AccessTokenTTL,
			RefreshToken: cfg.JWT.RefreshTokenTTL,
			IDToken:      cfg.JWT.IDTokenTTL,
		},
		Rotation: services.RotationPolicy{
			Rotate:      cfg.JWT.RotateRefreshTokens,
			GraceWindow: cfg.JWT.RefreshGraceWindow,
		},
		Logger: log,
	})

	authzService := services.NewAuthorizationService(
		repos.Client,
		repos.User,
		repos.AuthCode,
		deps.TokenGen,
		deps.Hasher,
		cfg.JWT.AuthCodeTTL,
		log,
	)

	introspectionService := services.NewIntrospectionService(repos.GrantedToken, keyService, deps.JWSManager, log)

	umaService := services.NewUMAService(repos.ResourceSet, repos.Ticket, deps.TokenGen, cfg.JWT.TicketTTL, log)

	return &Services{
		Token:         tokenService,
		Authorization: authzService,
		Introspection: introspectionService,
		UMA:           umaService,
		Key:           keyService,
	}
}
