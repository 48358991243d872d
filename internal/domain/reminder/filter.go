// Package reminder decides who is due for a payment reminder and in what
// order. The package only filters and sorts annotated student accounts; it
// never dispatches anything. Message composition and delivery belong to the
// dispatch service in infrastructure.
package reminder

import (
	"sort"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER WINDOW
// ══════════════════════════════════════════════════════════════════════════════

// WindowKind distinguishes the two selection modes.
type WindowKind string

const (
	// WindowAllPending selects only students who are already overdue.
	WindowAllPending WindowKind = "all_pending"

	// WindowDueWithin additionally looks ahead: students whose next due date
	// falls within N days are included even if not yet overdue.
	WindowDueWithin WindowKind = "due_within"
)

// Look-ahead horizons offered to operators.
const (
	DueWithinWeek      = 7
	DueWithinFortnight = 14
	DueWithinMonth     = 30
)

// Window is the reminder-window selection.
type Window struct {
	Kind WindowKind

	// Days - look-ahead horizon in days; only meaningful for WindowDueWithin.
	Days int
}

// AllPending returns the overdue-only window.
func AllPending() Window {
	return Window{Kind: WindowAllPending}
}

// DueWithin returns a look-ahead window. Only the 7, 14 and 30 day horizons
// are valid.
func DueWithin(days int) (Window, error) {
	w := Window{Kind: WindowDueWithin, Days: days}
	if !w.IsValid() {
		return Window{}, shared.ErrInvalidReminderWindow
	}
	return w, nil
}

// IsValid checks the window selection.
func (w Window) IsValid() bool {
	switch w.Kind {
	case WindowAllPending:
		return true
	case WindowDueWithin:
		return w.Days == DueWithinWeek || w.Days == DueWithinFortnight || w.Days == DueWithinMonth
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SELECTION
// ══════════════════════════════════════════════════════════════════════════════

// SelectForReminder computes the subset of the roster due for contact and
// orders it by urgency.
//
// A student already carrying pending cycles is always included - a
// forward-looking window never filters out the overdue. With a DueWithin
// window, students whose next due date falls inside [today, today+N days]
// (inclusive) join as a look-ahead warning set, even though they owe nothing
// yet. Cancelled students only appear while they still carry arrears.
//
// Ordering is ascending by baseline date: students unpaid the longest (or
// with the earliest admission date when never paid) sort first.
func SelectForReminder(roster []billing.StudentAccount, window Window, today time.Time) ([]billing.StudentAccount, error) {
	if !window.IsValid() {
		return nil, shared.ErrInvalidReminderWindow
	}

	day := timeutil.StartOfDay(today)

	// The look-ahead range is inclusive on both ends: a cycle due exactly on
	// the horizon day still warrants a heads-up.
	var lookAhead shared.TimeRange
	if window.Kind == WindowDueWithin {
		var err error
		lookAhead, err = shared.NewTimeRange(day, day.AddDate(0, 0, window.Days))
		if err != nil {
			return nil, err
		}
	}

	selected := make([]billing.StudentAccount, 0, len(roster))
	for _, account := range roster {
		if account.Student == nil {
			continue
		}

		if account.IsOverdue() {
			selected = append(selected, account)
			continue
		}

		if window.Kind != WindowDueWithin {
			continue
		}
		if account.Student.IsCancelled() {
			// No future cycle will come due for an ended enrolment.
			continue
		}

		if lookAhead.Contains(account.NextDueDate()) {
			selected = append(selected, account)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		bi, bj := selected[i].Baseline(), selected[j].Baseline()
		if !bi.Equal(bj) {
			return bi.Before(bj)
		}
		return selected[i].Student.DisplayName < selected[j].Student.DisplayName
	})

	return selected, nil
}
