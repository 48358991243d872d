// Package jobs contains implementations of scheduled jobs for the tuition
// fee hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/application/query"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/reminder"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/internal/infrastructure/service"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND REMINDERS JOB
// ══════════════════════════════════════════════════════════════════════════════

// SendRemindersJob walks the annotated roster every morning, selects the
// students due for contact and pushes a reminder for each through the
// delivery channel. Students already overdue are always included; the
// look-ahead window adds those whose next due date is coming up.
type SendRemindersJob struct {
	studentRepo student.Repository
	paymentRepo billing.Repository
	dispatcher  ReminderDispatcher
	logger      *slog.Logger

	config SendRemindersConfig

	lastRunStats atomic.Value // *SendRemindersStats
}

// ReminderDispatcher composes and delivers one reminder.
type ReminderDispatcher interface {
	Dispatch(ctx context.Context, account billing.StudentAccount, today time.Time) (service.ReminderMessage, bool, error)
}

// SendRemindersConfig contains configuration for the reminder job.
type SendRemindersConfig struct {
	// Enabled turns the job on or off without unregistering it.
	Enabled bool

	// Window selects who is contacted: overdue-only, or overdue plus
	// everyone due within the look-ahead horizon.
	Window reminder.Window

	// Concurrency is the number of reminders dispatched in parallel.
	Concurrency int

	// Timeout is the maximum duration for one run.
	Timeout time.Duration
}

// DefaultSendRemindersConfig returns sensible defaults: overdue students plus
// a one-week look-ahead.
func DefaultSendRemindersConfig() SendRemindersConfig {
	window, _ := reminder.DueWithin(reminder.DueWithinWeek)

	return SendRemindersConfig{
		Enabled:     true,
		Window:      window,
		Concurrency: 5,
		Timeout:     5 * time.Minute,
	}
}

// SendRemindersStats contains statistics from a reminder run.
type SendRemindersStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	RosterSize  int
	DueCount    int
	Sent        int
	Skipped     int
	Failed      int
	Errors      []error
}

// NewSendRemindersJob creates a new reminder job.
func NewSendRemindersJob(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
	dispatcher ReminderDispatcher,
	logger *slog.Logger,
	config SendRemindersConfig,
) *SendRemindersJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}

	return &SendRemindersJob{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		dispatcher:  dispatcher,
		logger:      logger,
		config:      config,
	}
}

// Name returns the job name.
func (j *SendRemindersJob) Name() string {
	return "send_reminders"
}

// Description returns a human-readable description.
func (j *SendRemindersJob) Description() string {
	return "Dispatches payment reminders to students due for contact"
}

// Run executes the reminder job.
func (j *SendRemindersJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &SendRemindersStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	if !j.config.Enabled {
		j.logger.Info("send_reminders job is disabled")
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
	stats.RosterSize = len(roster)

	due, err := reminder.SelectForReminder(roster, j.config.Window, today)
	if err != nil {
		return fmt.Errorf("failed to select reminder set: %w", err)
	}
	stats.DueCount = len(due)

	j.logger.Info("reminder selection complete",
		"roster_size", stats.RosterSize,
		"due_count", stats.DueCount,
		"window", string(j.config.Window.Kind),
		"look_ahead_days", j.config.Window.Days,
	)

	if stats.DueCount > 0 {
		j.dispatchConcurrently(ctx, due, today, stats)
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("send_reminders job completed",
		"duration", stats.Duration.String(),
		"due", stats.DueCount,
		"sent", stats.Sent,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	return nil
}

// dispatchConcurrently sends reminders using a worker pool.
func (j *SendRemindersJob) dispatchConcurrently(
	ctx context.Context,
	due []billing.StudentAccount,
	today time.Time,
	stats *SendRemindersStats,
) {
	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, j.config.Concurrency)
		mu        sync.Mutex
	)

	for _, account := range due {
		select {
		case <-ctx.Done():
			return
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{} // Acquire

		go func(account billing.StudentAccount) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			_, delivered, err := j.dispatcher.Dispatch(ctx, account, today)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				stats.Failed++
				stats.Errors = append(stats.Errors, err)
				j.logger.Error("failed to dispatch reminder",
					"student_id", account.Student.ID,
					"error", err,
				)
			case delivered:
				stats.Sent++
			default:
				stats.Skipped++
			}
		}(account)
	}

	wg.Wait()
}

// LastRunStats returns statistics from the last reminder run.
func (j *SendRemindersJob) LastRunStats() *SendRemindersStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*SendRemindersStats)
}
