package main

import (
	"context"
	"fmt"
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/handlers"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/middleware"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/ratelimit"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/services"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/store"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/utils"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds the initialized dependencies the routes need.
type appServices struct {
	db            *gorm.DB
	limiter       *ratelimit.SlidingWindow
	pipeline      *middleware.Pipeline
	scheduler     *services.Scheduler
	authHandler   *handlers.AuthHandler
	healthHandler *handlers.HealthHandler
}

// bootstrap opens the database and wires services, the admission pipeline
// and housekeeping jobs.
func bootstrap(cfg *config.Config) (*appServices, error) {
	issuer, err := utils.NewTokenIssuer(&cfg.JWT)
	if err != nil {
		return nil, err
	}

	db, err := models.Open(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	users := store.NewUserStore(db)
	tokens := store.NewRefreshTokenStore(db)
	authService := services.NewAuthService(
		users,
		tokens,
		issuer,
		utils.NewBcryptHasher(cfg.Auth.BcryptCost),
		services.NewAuditLogger(db),
		&cfg.JWT,
		&cfg.Auth,
	)

	if cfg.Auth.AdminUsername != "" {
		created, err := authService.EnsureUser(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, []string{"ROLE_ADMIN", "ROLE_USER"})
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create admin user")
		} else if created {
			logger.Infof("Admin user %q created", cfg.Auth.AdminUsername)
		}
	}

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerWindow)
	bypass := ratelimit.NewBypassPolicy(cfg.RateLimit.BypassPaths, cfg.RateLimit.BypassPrefixes)
	pipeline := middleware.NewPipeline(issuer, middleware.NewRateLimiter(limiter, bypass, cfg.RateLimit.Enabled))
	if !cfg.RateLimit.Enabled {
		logger.Warn().Msg("Rate limiting disabled")
	}

	scheduler := services.NewScheduler()
	if cfg.RateLimit.Enabled {
		if err := scheduler.Add("ratelimit-sweep", cfg.RateLimit.SweepSchedule, services.SweepRateLimitJob(limiter, time.Now)); err != nil {
			return nil, fmt.Errorf("invalid rate_limit.sweep_schedule: %w", err)
		}
	}
	if days := cfg.Auth.RefreshTokenRetentionDays; days > 0 {
		retention := time.Duration(days) * 24 * time.Hour
		if err := scheduler.Add("refresh-token-prune", cfg.Auth.PruneSchedule, services.PruneRefreshTokensJob(tokens, retention, time.Now)); err != nil {
			return nil, fmt.Errorf("invalid auth.prune_schedule: %w", err)
		}
	}
	scheduler.Start()

	return &appServices{
		db:            db,
		limiter:       limiter,
		pipeline:      pipeline,
		scheduler:     scheduler,
		authHandler:   handlers.NewAuthHandler(authService),
		healthHandler: handlers.NewHealthHandler(db, limiter),
	}, nil
}

// shutdown stops background jobs and closes the database.
func (s *appServices) shutdown(ctx context.Context) {
	s.scheduler.Stop(ctx)
	logger.Info().Msg("All schedulers stopped")

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
}
