package main

import (
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/handlers"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/middleware"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) error {
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return err
	}

	// Middleware
	r.Use(logger.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Probes
	r.GET("/health", svc.healthHandler.Health)
	r.GET("/ready", svc.healthHandler.Ready)

	public := r.Group("", svc.pipeline.Chain(middleware.Public)...)
	{
		public.GET("/v1/ping", handlers.Ping)

		auth := public.Group("/authentication")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}
	}

	protected := r.Group("/v1", svc.pipeline.Chain(middleware.Authenticated)...)
	{
		protected.GET("/me", svc.authHandler.Me)
	}

	return nil
}
