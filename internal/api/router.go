// Package api provides the HTTP API for Guildboard.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/api/handler"
	"github.com/guildboard/guildboard/internal/api/middleware"
	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/auth"
	"github.com/guildboard/guildboard/internal/compliance"
	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/featureflags"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	JWTService         *auth.JWTService
	Lifecycle          *account.Lifecycle
	Pipeline           *compliance.Pipeline
	Exporter           *compliance.Exporter
	ConsentService     *consent.Service
	FeatureFlagService *featureflags.Service
	Auditor            audit.Recorder
	ExportEnqueuer     handler.ExportEnqueuer
	SubsystemChecks    []handler.SubsystemCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "guildboard-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.SubsystemChecks...)
	meHandler := handler.NewMeHandler(cfg.Lifecycle, cfg.ConsentService)
	gdprHandler := handler.NewGDPRHandler(cfg.Pipeline, cfg.Exporter, cfg.ExportEnqueuer, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.Lifecycle, cfg.Pipeline, cfg.Auditor)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByUser(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)    // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Me endpoints (authenticated) - user-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", meHandler.GetMe)

			// Consents
			r.Get("/consents", meHandler.GetConsents)
			r.Put("/consents", meHandler.UpdateConsents)
			r.Get("/consents/history", meHandler.GetConsentHistory)
		})

		// GDPR endpoints (authenticated) - expensive, strict rate limiting
		r.Route("/gdpr", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(expensiveRateLimit) // 30 req/min per user
			r.Route("/export-requests", func(r chi.Router) {
				r.Get("/", gdprHandler.ListExportRequests)
				r.Post("/", gdprHandler.CreateExportRequest)
				r.Get("/{exportRequestId}", gdprHandler.GetExportRequest)
				r.Get("/{exportRequestId}/download", gdprHandler.DownloadExport)
			})
			r.Route("/deletion-requests", func(r chi.Router) {
				r.Get("/", gdprHandler.ListDeletionRequests)
				// Filing a deletion request is irreversible once
				// processed; keep the window tight.
				r.With(middleware.RateLimitByUser(middleware.SensitiveRateLimit)).
					Post("/", gdprHandler.CreateDeletionRequest)
				r.Get("/{deletionRequestId}", gdprHandler.GetDeletionRequest)
			})
		})

		// Admin endpoints (authenticated, admin role) - moderation and
		// compliance processing
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin)
			r.Use(standardRateLimit)

			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/", adminHandler.GetUser)
				r.Delete("/", adminHandler.DeleteUser)
				r.Post("/suspend", adminHandler.SuspendUser)
				r.Post("/ban", adminHandler.BanUser)
				r.Put("/role", adminHandler.ChangeRole)
				r.Post("/verify-email", adminHandler.VerifyEmail)
				r.Get("/audit-log", adminHandler.GetUserAuditLog)
			})

			r.Route("/deletion-requests/{deletionRequestId}", func(r chi.Router) {
				r.Get("/", adminHandler.GetDeletionRequest)
				r.Post("/process", adminHandler.ProcessDeletionRequest)
			})

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
