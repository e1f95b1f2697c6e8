package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-auth-service/cmd/api/infrastructure"
	"user-auth-service/internal/adapter/cache"
	"user-auth-service/internal/adapter/db/postgres"
	ginhandler "user-auth-service/internal/adapter/gin/handler"
	ginrouter "user-auth-service/internal/adapter/gin/router"
	"user-auth-service/internal/adapter/repository/cached"
	"user-auth-service/internal/config"
	"user-auth-service/internal/usecase/auth"
	"user-auth-service/internal/usecase/user"
	"user-auth-service/pkg/security"
	redisclient "user-auth-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Repo        *cached.UserRepository
	Tokens      *security.TokenManager
	UserUC      *user.Usecase
	AuthUC      *auth.Usecase
	UserHandler *ginhandler.UserHandler
	AuthHandler *ginhandler.AuthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// userCache stays a nil interface when Redis is disabled
	var userCache cache.UserCache
	if rdb != nil {
		userCache = cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
	}

	dbRepo := postgres.NewUserRepoPG(db, l)
	repo := cached.NewUserRepository(dbRepo, userCache, l)

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewTokenManager(security.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL(),
	})

	userUC := user.New(repo, hasher, l)
	authUC := auth.New(userUC, repo, hasher, tokens, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Repo:        repo,
		Tokens:      tokens,
		UserUC:      userUC,
		AuthUC:      authUC,
		UserHandler: ginhandler.NewUserHandler(userUC, l),
		AuthHandler: ginhandler.NewAuthHandler(authUC, l),
	}, nil
}

// RouterDeps returns the dependencies the HTTP router needs.
func (c *Container) RouterDeps() ginrouter.Deps {
	return ginrouter.Deps{
		Users:        c.UserHandler,
		Auth:         c.AuthHandler,
		Tokens:       c.Tokens,
		Health:       c.Repo,
		AllowOrigins: c.Config.App.CORSAllowedOrigins,
		Log:          c.Logger,
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
