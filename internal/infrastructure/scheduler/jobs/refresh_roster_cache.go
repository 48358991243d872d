package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/application/query"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/retry"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH ROSTER CACHE JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshRosterCacheJob recomputes the annotated roster and stores today's
// snapshot, so the first morning roster query hits a warm cache. Liability is
// a function of the calendar day: the job runs right after midnight, when
// yesterday's snapshot stopped being valid.
type RefreshRosterCacheJob struct {
	studentRepo    student.Repository
	paymentRepo    billing.Repository
	cache          billing.RosterCache
	eventPublisher shared.EventPublisher
	retrier        *retry.Retrier
	logger         *slog.Logger

	config RefreshRosterCacheConfig

	lastRunStats atomic.Value // *RefreshRosterCacheStats
}

// RefreshRosterCacheConfig contains configuration for the cache refresh job.
type RefreshRosterCacheConfig struct {
	// Enabled turns the job on or off without unregistering it.
	Enabled bool

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultRefreshRosterCacheConfig returns sensible defaults.
func DefaultRefreshRosterCacheConfig() RefreshRosterCacheConfig {
	return RefreshRosterCacheConfig{
		Enabled: true,
		Timeout: 2 * time.Minute,
	}
}

// RefreshRosterCacheStats contains statistics from a refresh run.
type RefreshRosterCacheStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	RosterSize  int
	Day         time.Time
}

// NewRefreshRosterCacheJob creates a new cache refresh job.
func NewRefreshRosterCacheJob(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
	cache billing.RosterCache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config RefreshRosterCacheConfig,
) *RefreshRosterCacheJob {
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}

	return &RefreshRosterCacheJob{
		studentRepo:    studentRepo,
		paymentRepo:    paymentRepo,
		cache:          cache,
		eventPublisher: eventPublisher,
		retrier:        retry.CacheRetrier(),
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *RefreshRosterCacheJob) Name() string {
	return "refresh_roster_cache"
}

// Description returns a human-readable description.
func (j *RefreshRosterCacheJob) Description() string {
	return "Recomputes the annotated roster and warms today's cache snapshot"
}

// Run executes the cache refresh job.
func (j *RefreshRosterCacheJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if !j.config.Enabled {
		j.logger.Info("refresh_roster_cache job is disabled")
		return nil
	}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	today := timeutil.StartOfDay(time.Now().UTC())

	roster, err := query.AnnotateRoster(ctx, j.studentRepo, j.paymentRepo, today)
	if err != nil {
		return fmt.Errorf("failed to annotate roster: %w", err)
	}

	// Stale snapshots of previous days go first so a partial failure never
	// leaves yesterday's data answering today's queries.
	err = j.retrier.Do(ctx, func(ctx context.Context) error {
		if err := j.cache.Invalidate(ctx); err != nil {
			return retry.Retryable(err)
		}
		if err := j.cache.SetSnapshot(ctx, today, roster); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store roster snapshot: %w", err)
	}

	_ = j.eventPublisher.Publish(ctx, shared.NewRosterCacheRefreshedEvent(today, len(roster)))

	stats := &RefreshRosterCacheStats{
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		RosterSize:  len(roster),
		Day:         today,
	}
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("refresh_roster_cache job completed",
		"duration", stats.Duration.String(),
		"roster_size", stats.RosterSize,
		"day", timeutil.FormatDateStr(today),
	)

	return nil
}

// LastRunStats returns statistics from the last refresh run.
func (j *RefreshRosterCacheJob) LastRunStats() *RefreshRosterCacheStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RefreshRosterCacheStats)
}
