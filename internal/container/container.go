package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/snetlabs/social-network/app/db"
	"github.com/snetlabs/social-network/config"
	"github.com/snetlabs/social-network/internal/api/auth"
	"github.com/snetlabs/social-network/internal/api/profiles"
)

// Container holds the user service's wired dependencies.
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	TokenIssuer    *auth.TokenIssuer
	AuthService    auth.AuthService
	AuthHandler    *auth.HandlerImpl
	ProfileHandler *profiles.HandlerImpl
}

// NewContainer initializes the database, runs migrations and wires
// repositories, services and handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to generate database config: %w", err)
	}

	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, logger) {
		pool.Close()
		return nil, fmt.Errorf("database not ready after waiting")
	}

	tokenIssuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to construct token issuer: %w", err)
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, tokenIssuer, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	profileRepo := profiles.NewPostgresProfileRepo(pool, logger)
	profileService := profiles.NewProfileService(profileRepo, logger)
	profileHandler := profiles.NewProfileHandler(profileService, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		TokenIssuer:    tokenIssuer,
		AuthService:    authService,
		AuthHandler:    authHandler,
		ProfileHandler: profileHandler,
	}, nil
}

// Close releases the container's resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
