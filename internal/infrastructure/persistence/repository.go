package persistence

import (
	"github.com/ruziba3vich/token-service/internal/domain/keys"
	"github.com/ruziba3vich/token-service/internal/domain/oauth"
	"github.com/ruziba3vich/token-service/internal/domain/token"
	"github.com/ruziba3vich/token-service/internal/domain/uma"
	"github.com/ruziba3vich/token-service/internal/domain/user"
	"github.com/ruziba3vich/token-service/internal/infrastructure/cache/redis"
	"github.com/ruziba3vich/token-service/internal/infrastructure/persistence/postgres"
)

// Repositories holds all repository implementations. Durable records
// live in PostgreSQL; short-lived single-use grants and the token cache
// live in Redis.
type Repositories struct {
	User         user.Repository
	Client       oauth.ClientRepository
	Key          keys.Repository
	RefreshToken token.RefreshTokenRepository
	ResourceSet  uma.ResourceSetRepository

	AuthCode     oauth.AuthorizationCodeRepository
	Ticket       uma.TicketRepository
	GrantedToken token.GrantedTokenRepository
}

// NewRepositories creates all repository implementations.
func NewRepositories(db *postgres.DB, redisClient *redis.Client) *Repositories {
	return &Repositories{
		User:         postgres.NewUserRepository(db),
		Client:       postgres.NewClientRepository(db),
		Key:          postgres.NewSigningKeyRepository(db),
		RefreshToken: postgres.NewRefreshTokenRepository(db),
		ResourceSet:  postgres.NewResourceSetRepository(db),
		AuthCode:     redis.NewAuthorizationCodeRepository(redisClient),
		Ticket:       redis.NewTicketRepository(redisClient),
		GrantedToken: redis.NewGrantedTokenRepository(redisClient),
	}
}
