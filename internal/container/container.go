package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-identity-profiles/app/db"
	"github.com/FACorreiaa/go-identity-profiles/config"
	"github.com/FACorreiaa/go-identity-profiles/internal/api/auth"
	"github.com/FACorreiaa/go-identity-profiles/internal/api/profile"
	"github.com/FACorreiaa/go-identity-profiles/internal/media"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	TokenService   *auth.TokenService
	AuthHandler    *auth.HandlerImpl
	ProfileHandler *profile.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	tokenService, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		logger.Error("Failed to initialize token service", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	imageStore, err := media.NewMinioImageStore(ctx, cfg.Media, logger)
	if err != nil {
		logger.Error("Failed to initialize image store", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	profileRepo := profile.NewPostgresProfileRepo(pool, logger)
	profileService := profile.NewProfileService(profileRepo, logger)
	profileHandler := profile.NewHandlerImpl(profileService, imageStore, cfg.Media, logger)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, profileRepo, hasher, tokenService, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		TokenService:   tokenService,
		AuthHandler:    authHandler,
		ProfileHandler: profileHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
