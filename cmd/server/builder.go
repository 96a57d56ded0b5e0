package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruziba3vich/token-service/config"
	"github.com/ruziba3vich/token-service/internal/application"
	"github.com/ruziba3vich/token-service/internal/infrastructure/cache/redis"
	"github.com/ruziba3vich/token-service/internal/infrastructure/persistence"
	"github.com/ruziba3vich/token-service/internal/infrastructure/persistence/postgres"
	apphttp "github.com/ruziba3vich/token-service/internal/interfaces/http"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting token service...", logger.Component("main"))

	db, redisClient, err := initInfrastructure(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()
	defer redisClient.Close()

	repos := persistence.NewRepositories(db, redisClient)
	deps := application.NewDependencies(cfg)
	svcs := application.NewServices(repos, deps, cfg, log)

	if err := svcs.Key.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	log.Info("Signing keys initialized", logger.Component("main"))

	svcs.Key.StartRotationScheduler(ctx, cfg.JWT.KeyRotationInterval)
	log.Info("Key rotation scheduler started",
		logger.Component("main"),
		logger.Duration("interval", cfg.JWT.KeyRotationInterval))

	server := newServer(cfg, svcs, db, redisClient, log)
	return startServer(server, log)
}

func initInfrastructure(cfg *config.Config, log logger.Logger) (*postgres.DB, *redis.Client, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Connected to PostgreSQL",
		logger.Component("infrastructure"),
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
	)

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("Connected to Redis",
		logger.Component("infrastructure"),
		logger.String("host", cfg.Redis.Host),
		logger.Int("port", cfg.Redis.Port),
	)

	return db, redisClient, nil
}

func newServer(
	cfg *config.Config,
	svcs *application.Services,
	db *postgres.DB,
	redisClient *redis.Client,
	log logger.Logger,
) *http.Server {
	router := apphttp.NewRouter(cfg, &apphttp.RouterDeps{
		Services:      svcs,
		DBHealther:    db,
		RedisHealther: redisClient,
		Logger:        log,
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func startServer(server *http.Server, log logger.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			logger.Component("server"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...",
			logger.Component("server"),
			logger.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited", logger.Component("server"))
	return nil
}
