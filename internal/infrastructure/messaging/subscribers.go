package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER CACHE INVALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// rosterMutatingEvents are the events after which any cached roster snapshot
// is stale. Liability depends on the student set, the fee, and the payment
// history, so every write lands here.
var rosterMutatingEvents = []shared.EventType{
	shared.EventStudentRegistered,
	shared.EventStudentUpdated,
	shared.EventStudentCancelled,
	shared.EventFeeChanged,
	shared.EventPaymentRecorded,
}

// RegisterRosterInvalidator subscribes a handler that drops all cached roster
// snapshots whenever a student or payment write happens. The next roster read
// recomputes from the database.
func RegisterRosterInvalidator(d *Dispatcher, cache billing.RosterCache, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	handler := func(ctx context.Context, event shared.Event) error {
		if err := cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate roster cache: %w", err)
		}

		logger.Debug("roster cache invalidated",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
		)
		return nil
	}

	return d.RegisterMany(rosterMutatingEvents, "roster-cache-invalidator", handler)
}
