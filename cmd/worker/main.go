// Package main is the entry point for the tuition fee hub background worker.
//
// The worker drives the daily billing cycle:
//   - sends payment reminders for students in arrears or coming due
//   - rebuilds the cached roster snapshot right after midnight, when
//     yesterday's liability figures stop being valid
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
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/reminder"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/messaging"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/persistence/postgres"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/persistence/redis"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/scheduler"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/scheduler/jobs"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/service"
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
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting tuition fee hub worker",
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler is disabled, worker has nothing to do")
		return nil
	}

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

	// The worker needs the current schema as well.
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

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, roster caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			rosterCache = redis.NewRosterCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	var eventBus shared.EventBus

	localCfg := messaging.DefaultInMemoryEventBusConfig()
	localCfg.Logger = log

	if cfg.Features.IsEnabled(config.FeatureEventsRedisBus) && redisCache != nil {
		eventBus, err = messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubClient(redisCache),
			LocalBusConfig: localCfg,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize event bus: %w", err)
		}
	} else {
		eventBus = messaging.NewInMemoryEventBus(localCfg)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES & JOBS
	// ─────────────────────────────────────────────────────────────────────────
	studentRepo := postgres.NewStudentRepository(dbConn)
	paymentRepo := postgres.NewPaymentRepository(dbConn)

	reminderService := service.NewReminderService(service.NewLogChannel(log), eventBus, log)

	remindersConfig := jobs.DefaultSendRemindersConfig()
	remindersConfig.Enabled = cfg.Features.IsEnabled(config.FeatureRemindersAutoSend)
	remindersConfig.Concurrency = cfg.Reminders.Concurrency
	remindersConfig.Timeout = cfg.Scheduler.JobTimeout
	if cfg.Features.IsEnabled(config.FeatureRemindersLookAhead) && cfg.Reminders.LookAheadDays > 0 {
		window, err := reminder.DueWithin(cfg.Reminders.LookAheadDays)
		if err != nil {
			return fmt.Errorf("invalid reminder window: %w", err)
		}
		remindersConfig.Window = window
	} else {
		remindersConfig.Window = reminder.AllPending()
	}

	remindersJob := jobs.NewSendRemindersJob(studentRepo, paymentRepo, reminderService, log, remindersConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing scheduler...")
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:        log,
		Timezone:      cfg.App.Location,
		EnableMetrics: true,
	})

	remindersSchedule, err := scheduler.ParseSchedule(cfg.Scheduler.SendRemindersCron)
	if err != nil {
		return fmt.Errorf("invalid reminders schedule: %w", err)
	}
	if err := sched.Register(remindersJob, remindersSchedule); err != nil {
		return fmt.Errorf("failed to register reminders job: %w", err)
	}

	if rosterCache != nil && cfg.Features.IsEnabled(config.FeatureRosterCacheWarm) {
		refreshConfig := jobs.DefaultRefreshRosterCacheConfig()
		refreshJob := jobs.NewRefreshRosterCacheJob(
			studentRepo, paymentRepo, rosterCache, eventBus, log, refreshConfig)

		refreshSchedule, err := scheduler.ParseSchedule(cfg.Scheduler.RefreshRosterCacheCron)
		if err != nil {
			return fmt.Errorf("invalid roster refresh schedule: %w", err)
		}
		if err := sched.Register(refreshJob, refreshSchedule); err != nil {
			return fmt.Errorf("failed to register roster refresh job: %w", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("tuition fee hub worker is running",
		"reminders_cron", cfg.Scheduler.SendRemindersCron,
		"roster_refresh_cron", cfg.Scheduler.RefreshRosterCacheCron,
		"timezone", cfg.App.Timezone,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("shutdown completed successfully")
	return nil
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
