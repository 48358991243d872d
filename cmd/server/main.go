// Package main is the entry point for the tuition fee hub API server.
//
// The server exposes the REST API used by the front office: the annotated
// roster, per-student liability, reminder candidate lists, and the write
// endpoints for registrations, payments, cancellations and fee changes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tuition-hub/tuition-fee-hub/config"
	"github.com/tuition-hub/tuition-fee-hub/internal/application/command"
	"github.com/tuition-hub/tuition-fee-hub/internal/application/query"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/messaging"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/persistence/postgres"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/tuition-hub/tuition-fee-hub/internal/interface/http"
	"github.com/tuition-hub/tuition-fee-hub/internal/interface/http/handlers"
	"github.com/tuition-hub/tuition-fee-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting tuition fee hub API server",
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional roster snapshot cache)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var rosterCache billing.RosterCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, roster caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	if redisCache != nil && cfg.Features.IsEnabled(config.FeatureRosterCache) {
		rosterCache = redis.NewRosterCache(redisCache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS & DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBus, err := buildEventBus(cfg, redisCache, log)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	dispatcher := messaging.NewDispatcher(func() messaging.DispatcherConfig {
		dc := messaging.DefaultDispatcherConfig(eventBus)
		dc.Logger = log
		return dc
	}())
	defer func() { _ = dispatcher.Stop() }()

	if rosterCache != nil {
		if err := messaging.RegisterRosterInvalidator(dispatcher, rosterCache, log); err != nil {
			return fmt.Errorf("failed to register roster invalidator: %w", err)
		}
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES & APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application handlers...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	paymentRepo := postgres.NewPaymentRepository(dbConn)

	deps := httpapi.Dependencies{
		GetRosterHandler:           query.NewGetRosterHandler(studentRepo, paymentRepo, rosterCache),
		GetStudentLiabilityHandler: query.NewGetStudentLiabilityHandler(studentRepo, paymentRepo),
		ListDueRemindersHandler:    query.NewListDueRemindersHandler(studentRepo, paymentRepo, rosterCache),
		RegisterStudentHandler:     command.NewRegisterStudentHandler(studentRepo, eventBus),
		RecordPaymentHandler:       command.NewRecordPaymentHandler(studentRepo, paymentRepo, eventBus),
		CancelStudentHandler:       command.NewCancelStudentHandler(studentRepo, paymentRepo, eventBus),
		UpdateMonthlyFeeHandler:    command.NewUpdateMonthlyFeeHandler(studentRepo, eventBus),
		Logger:                     setupHTTPLogger(cfg),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	deps.HealthChecker = healthChecker

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	serverCfg.APIKeyHeader = cfg.HTTP.APIKeyHeader
	serverCfg.APIKeyHashes = cfg.HTTP.APIKeyHashes

	server := httpapi.NewServer(serverCfg, deps)

	log.Info("tuition fee hub API server is running", "address", server.Address())
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// buildEventBus selects the event transport: Redis pub/sub fan-out when the
// flag is on and Redis is reachable, the in-memory bus otherwise.
func buildEventBus(cfg *config.Config, redisCache *redis.Cache, log *slog.Logger) (shared.EventBus, error) {
	localCfg := messaging.DefaultInMemoryEventBusConfig()
	localCfg.Logger = log

	if cfg.Features.IsEnabled(config.FeatureEventsRedisBus) && redisCache != nil {
		return messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubClient(redisCache),
			LocalBusConfig: localCfg,
			Logger:         log,
		})
	}

	return messaging.NewInMemoryEventBus(localCfg), nil
}

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// setupHTTPLogger configures the request logger for the HTTP layer.
func setupHTTPLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	return logger.New(opts)
}
