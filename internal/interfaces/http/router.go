package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ruziba3vich/token-service/config"
	"github.com/ruziba3vich/token-service/internal/application"
	"github.com/ruziba3vich/token-service/internal/interfaces/http/handlers"
	"github.com/ruziba3vich/token-service/internal/interfaces/http/middleware"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// Router wraps the Gin engine with application dependencies.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// RouterDeps contains dependencies needed by the router.
type RouterDeps struct {
	Services      *application.Services
	DBHealther    handlers.HealthChecker
	RedisHealther handlers.HealthChecker
	Logger        logger.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, deps *RouterDeps) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewRequestLoggerMiddleware(deps.Logger).Handler())

	tokenHandler := handlers.NewTokenHandler(deps.Services.Token, deps.Services.Introspection)
	oidcHandler := handlers.NewOIDCHandler(deps.Services.Authorization, deps.Services.Key, cfg.JWT.Issuer)
	umaHandler := handlers.NewUMAHandler(deps.Services.UMA)
	healthHandler := handlers.NewHealthHandler(deps.DBHealther, deps.RedisHealther)

	var rateLimiter *middleware.RateLimiter
	var grantRateLimiter *middleware.GrantRateLimiter
	if cfg.Security.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
		grantRateLimiter = middleware.NewGrantRateLimiter()
	}

	// Health endpoints (no rate limiting)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/live", healthHandler.Live)

	if rateLimiter != nil {
		engine.Use(rateLimiter.Middleware())
	}

	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))

	// OIDC Discovery endpoints
	engine.GET("/.well-known/openid-configuration", oidcHandler.OpenIDConfiguration)
	engine.GET("/jwks.json", oidcHandler.JWKS)

	// Grant endpoints carry credentials; limit them harder.
	grants := engine.Group("")
	if grantRateLimiter != nil {
		grants.Use(grantRateLimiter.Middleware())
	}
	{
		grants.POST("/authorize", oidcHandler.Authorize)
		grants.POST("/token", tokenHandler.Token)
		grants.POST("/token/revoke", tokenHandler.Revoke)
		grants.POST("/introspect", tokenHandler.Introspect)
	}

	// UMA endpoints
	uma := engine.Group("/uma")
	{
		uma.POST("/resource_set", umaHandler.CreateResourceSet)
		uma.GET("/resource_set", umaHandler.ListResourceSets)
		uma.GET("/resource_set/:id", umaHandler.GetResourceSet)
		uma.PUT("/resource_set/:id", umaHandler.UpdateResourceSet)
		uma.DELETE("/resource_set/:id", umaHandler.DeleteResourceSet)
		uma.POST("/permission", umaHandler.RequestPermission)
	}

	return &Router{
		engine: engine,
		cfg:    cfg,
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// corsMiddleware creates a CORS middleware.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
