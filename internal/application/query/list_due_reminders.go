package query

import (
	"context"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/reminder"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST DUE REMINDERS QUERY
// Selects the subset of the roster due for a payment reminder, ordered by
// urgency: overdue students always, plus an optional look-ahead window of
// students whose next cycle starts soon.
// ══════════════════════════════════════════════════════════════════════════════

// ListDueRemindersQuery contains the reminder selection parameters.
type ListDueRemindersQuery struct {
	// LookAheadDays - 0 selects only overdue students; 7, 14 or 30 adds the
	// look-ahead set. Other values are rejected.
	LookAheadDays int

	// Today - reference date. Zero means the current UTC date.
	Today time.Time
}

// Validate resolves the window selection.
func (q ListDueRemindersQuery) Validate() (reminder.Window, error) {
	if q.LookAheadDays == 0 {
		return reminder.AllPending(), nil
	}
	return reminder.DueWithin(q.LookAheadDays)
}

// ReminderEntryDTO is the wire shape of one reminder candidate.
type ReminderEntryDTO struct {
	// StudentID - internal student ID.
	StudentID string `json:"student_id"`

	// DisplayName - name shown on the reminder.
	DisplayName string `json:"display_name"`

	// Phone - guardian contact phone, empty when unset.
	Phone string `json:"phone,omitempty"`

	// Status - "enrolled" or "cancelled".
	Status string `json:"status"`

	// PaidTill - effective paid-through date, YYYY-MM-DD; empty when never
	// paid.
	PaidTill string `json:"paid_till,omitempty"`

	// PendingMonths - whole billing cycles outstanding. Zero for look-ahead
	// entries that owe nothing yet.
	PendingMonths int `json:"pending_months"`

	// PendingAmount - total outstanding amount.
	PendingAmount shared.Money `json:"pending_amount"`

	// NextDueDate - first day of the first unpaid cycle, YYYY-MM-DD.
	NextDueDate string `json:"next_due_date"`

	// Overdue - true when at least one cycle is already pending, false for
	// look-ahead entries.
	Overdue bool `json:"overdue"`
}

// ListDueRemindersResult contains the ordered reminder list.
type ListDueRemindersResult struct {
	// Entries - reminder candidates, most urgent first.
	Entries []ReminderEntryDTO `json:"entries"`

	// OverdueCount - entries already carrying pending cycles.
	OverdueCount int `json:"overdue_count"`

	// LookAheadDays - the window used, 0 for overdue-only.
	LookAheadDays int `json:"look_ahead_days"`

	// AsOf - the reference date, YYYY-MM-DD.
	AsOf string `json:"as_of"`
}

// ListDueRemindersHandler handles reminder selection queries.
type ListDueRemindersHandler struct {
	studentRepo student.Repository
	paymentRepo billing.Repository
	rosterCache billing.RosterCache
}

// NewListDueRemindersHandler creates a new ListDueRemindersHandler.
func NewListDueRemindersHandler(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
	rosterCache billing.RosterCache,
) *ListDueRemindersHandler {
	return &ListDueRemindersHandler{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		rosterCache: rosterCache,
	}
}

// Handle executes the reminder selection.
func (h *ListDueRemindersHandler) Handle(ctx context.Context, query ListDueRemindersQuery) (*ListDueRemindersResult, error) {
	window, err := query.Validate()
	if err != nil {
		return nil, err
	}

	today := query.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = timeutil.StartOfDay(today)

	roster, err := h.loadRoster(ctx, today)
	if err != nil {
		return nil, err
	}

	selected, err := reminder.SelectForReminder(roster, window, today)
	if err != nil {
		return nil, err
	}

	entries := make([]ReminderEntryDTO, len(selected))
	overdue := 0
	for i, account := range selected {
		entries[i] = toReminderEntryDTO(account)
		if entries[i].Overdue {
			overdue++
		}
	}

	return &ListDueRemindersResult{
		Entries:       entries,
		OverdueCount:  overdue,
		LookAheadDays: window.Days,
		AsOf:          timeutil.FormatDateStr(today),
	}, nil
}

func (h *ListDueRemindersHandler) loadRoster(ctx context.Context, today time.Time) ([]billing.StudentAccount, error) {
	if h.rosterCache != nil {
		if snapshot, err := h.rosterCache.GetSnapshot(ctx, today); err == nil && len(snapshot) > 0 {
			return snapshot, nil
		}
	}
	return AnnotateRoster(ctx, h.studentRepo, h.paymentRepo, today)
}

func toReminderEntryDTO(account billing.StudentAccount) ReminderEntryDTO {
	s := account.Student

	dto := ReminderEntryDTO{
		StudentID:     s.ID.String(),
		DisplayName:   s.DisplayName,
		Phone:         s.Phone.String(),
		Status:        string(s.Status()),
		PendingMonths: account.Liability.PendingMonths,
		PendingAmount: account.Liability.PendingAmount,
		NextDueDate:   timeutil.FormatDateStr(account.NextDueDate()),
		Overdue:       account.IsOverdue(),
	}

	if account.PaidThrough != nil {
		dto.PaidTill = timeutil.FormatDateStr(*account.PaidThrough)
	}

	return dto
}
