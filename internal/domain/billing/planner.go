package billing

import (
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT PLANNER
// ══════════════════════════════════════════════════════════════════════════════

// PlanPaidThrough computes the paid-through date that clearing monthsToClear
// billing cycles would produce, following the same month-boundary rules the
// liability calculator uses.
//
// The baseline (effective paid-through, or admission when never paid) is
// truncated to the first day of its month. When the baseline month has
// already started relative to today, the plan advances one month first: it
// always starts clearing from the next unpaid cycle, never re-covering an
// already-settled one. The returned date is the last calendar day of the
// final cleared month - paid-through dates are always month-end dates.
//
// Feeding the result back into ComputeLiability with the same today yields
// zero pending months for exactly monthsToClear cycles into the future.
func PlanPaidThrough(admission time.Time, paidThrough *time.Time, monthsToClear int, today time.Time) (time.Time, error) {
	if monthsToClear < 1 {
		return time.Time{}, shared.ErrMonthsToClearOutOfRange
	}
	if admission.IsZero() {
		return time.Time{}, shared.ErrMissingAdmissionDate
	}

	baseline := timeutil.StartOfDay(admission)
	if paidThrough != nil {
		if paidThrough.IsZero() {
			return time.Time{}, shared.ErrInvalidPaidThrough
		}
		baseline = timeutil.StartOfDay(*paidThrough)
	}

	month := timeutil.StartOfMonth(baseline)
	if !month.After(timeutil.StartOfDay(today)) {
		month = timeutil.FirstOfNextMonth(month)
	}

	month = month.AddDate(0, monthsToClear-1, 0)

	return timeutil.LastDayOfMonth(month), nil
}
