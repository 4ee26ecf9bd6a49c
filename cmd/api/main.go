// Package main provides the entrypoint for the Guildboard API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/guildboard/guildboard/internal/account"
	"github.com/guildboard/guildboard/internal/api"
	"github.com/guildboard/guildboard/internal/api/handler"
	"github.com/guildboard/guildboard/internal/api/middleware"
	"github.com/guildboard/guildboard/internal/audit"
	"github.com/guildboard/guildboard/internal/auth"
	"github.com/guildboard/guildboard/internal/compliance"
	"github.com/guildboard/guildboard/internal/consent"
	"github.com/guildboard/guildboard/internal/content"
	"github.com/guildboard/guildboard/internal/database"
	"github.com/guildboard/guildboard/internal/featureflags"
	"github.com/guildboard/guildboard/internal/notify"
	"github.com/guildboard/guildboard/internal/profile"
	"github.com/guildboard/guildboard/internal/session"
	"github.com/guildboard/guildboard/internal/telemetry"
	"github.com/guildboard/guildboard/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// redisPinger adapts the redis client to the ops Pinger interface.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	const serviceName = "guildboard-api"

	// Local development convenience; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Guildboard API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	txManager := database.NewPgxTxManager(pool)

	// Sessions live in Redis when configured, Postgres otherwise
	var sessionRepo session.Repository
	subsystemChecks := []handler.SubsystemCheck{
		{Name: "postgres", Pinger: pool},
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		sessionRepo = session.NewRedisRepository(redisClient)
		subsystemChecks = append(subsystemChecks, handler.SubsystemCheck{
			Name:   "redis",
			Pinger: redisPinger{client: redisClient},
		})
		log.Info().Str("addr", redisAddr).Msg("session store: redis")
	} else {
		sessionRepo = session.NewPostgresRepository(pool)
		log.Info().Msg("session store: postgres")
	}

	sessionService := session.NewService(session.ServiceConfig{
		Repository: sessionRepo,
		Logger:     log,
	})

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.guildboard.dev",
		Audience:   "guildboard-api",
	})

	// Initialize repositories
	accountRepo := account.NewPostgresRepository(pool)
	consentRepo := consent.NewPostgresRepository(pool)
	profileRepo := profile.NewPostgresRepository(pool)
	contentRepo := content.NewPostgresRepository(pool)
	complianceRepo := compliance.NewPostgresRepository(pool)
	auditor := audit.NewPostgresRecorder(pool)

	// Initialize feature flags repository and service
	flagCacheMetrics, err := middleware.NewFlagCacheMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize flag cache metrics")
	}
	ffRepo := featureflags.NewPostgresRepository(pool)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository:   ffRepo,
		Logger:       log,
		CacheTTL:     1 * time.Minute,
		DefaultFlags: featureflags.DefaultFlags(),
		CacheMetrics: flagCacheMetrics,
	})
	log.Info().Msg("feature flags service initialized")

	// Deletion-completed webhook (off when no endpoint is configured)
	webhookMetrics, err := middleware.NewWebhookMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize webhook metrics")
	}
	webhook := notify.NewWebhook(notify.WebhookConfig{
		Endpoint: os.Getenv("WEBHOOK_ENDPOINT"),
		Secret:   os.Getenv("WEBHOOK_SECRET"),
		Flags:    ffService,
		Metrics:  webhookMetrics,
		Logger:   log,
	})

	// Initialize the compliance pipeline and exporter
	pipeline := compliance.NewPipeline(compliance.PipelineConfig{
		Accounts:  accountRepo,
		Sessions:  sessionService,
		Consents:  consentRepo,
		Profiles:  profileRepo,
		Contents:  contentRepo,
		Requests:  complianceRepo,
		Auditor:   auditor,
		Flags:     ffService,
		Notifier:  webhook,
		TxManager: txManager,
		Logger:    log,
	})

	exporter := compliance.NewExporter(compliance.ExporterConfig{
		Accounts:  accountRepo,
		Consents:  consentRepo,
		Profiles:  profileRepo,
		Contents:  contentRepo,
		Requests:  complianceRepo,
		Flags:     ffService,
		TxManager: txManager,
		Logger:    log,
	})

	// Initialize the account lifecycle service
	lifecycle := account.NewLifecycle(account.LifecycleConfig{
		Repository: accountRepo,
		Sessions:   sessionService,
		Auditor:    auditor,
		Purger:     pipeline,
		TxManager:  txManager,
		Logger:     log,
	})
	log.Info().Msg("account lifecycle service initialized")

	// Initialize the consent ledger
	consentService := consent.NewService(consent.ServiceConfig{
		Repository: consentRepo,
		TxManager:  txManager,
		Logger:     log,
	})

	// Export job publisher (off when no project is configured; pending
	// jobs then wait for a worker sweep)
	var enqueuer handler.ExportEnqueuer
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topicName := os.Getenv("PUBSUB_TOPIC")
		if topicName == "" {
			topicName = "compliance-jobs"
		}
		publisher, err := worker.NewPublisher(ctx, worker.PublisherConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job publisher")
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close job publisher")
			}
		}()
		enqueuer = publisher
		log.Info().Str("topic", topicName).Msg("job publisher initialized")
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - export jobs will not be enqueued")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		JWTService:         jwtService,
		Lifecycle:          lifecycle,
		Pipeline:           pipeline,
		Exporter:           exporter,
		ConsentService:     consentService,
		FeatureFlagService: ffService,
		Auditor:            auditor,
		ExportEnqueuer:     enqueuer,
		SubsystemChecks:    subsystemChecks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
