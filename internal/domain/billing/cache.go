package billing

import (
	"context"
	"time"
)

// RosterCache caches the fully annotated roster snapshot for a reference
// date. Liability is a function of the calendar day, so a snapshot is only
// valid for the day it was computed for; implementations key by date and
// invalidate on any write to students or payments.
type RosterCache interface {
	// GetSnapshot returns the cached roster for the given day, or an error
	// when no snapshot is cached.
	GetSnapshot(ctx context.Context, day time.Time) ([]StudentAccount, error)

	// SetSnapshot stores the roster for the given day.
	SetSnapshot(ctx context.Context, day time.Time, roster []StudentAccount) error

	// Invalidate drops all cached snapshots.
	Invalidate(ctx context.Context) error
}
