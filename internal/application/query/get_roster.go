// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ROSTER QUERY
// Returns the student roster with derived billing state attached to every
// entry: effective paid-through date, pending cycle count and pending amount,
// all computed for the query's reference date.
// ══════════════════════════════════════════════════════════════════════════════

// GetRosterQuery contains the roster request parameters.
type GetRosterQuery struct {
	// Today - reference date for liability. Zero means the current UTC date.
	Today time.Time

	// IncludeCancelled - include students whose enrolment has ended.
	IncludeCancelled bool

	// Page, PageSize - pagination over the annotated roster.
	Page     int
	PageSize int
}

// Validate validates the query parameters.
func (q *GetRosterQuery) Validate() error {
	if q.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if q.PageSize < 0 {
		return errors.New("page_size cannot be negative")
	}
	return nil
}

// RosterEntryDTO is the wire shape of one annotated roster row.
type RosterEntryDTO struct {
	// StudentID - internal student ID.
	StudentID string `json:"student_id"`

	// DisplayName - name shown on rosters and reminders.
	DisplayName string `json:"display_name"`

	// Address - postal address, empty when unset.
	Address string `json:"address,omitempty"`

	// Phone - guardian contact phone, empty when unset.
	Phone string `json:"phone,omitempty"`

	// AdmissionDate - admission date, YYYY-MM-DD.
	AdmissionDate string `json:"admission_date"`

	// CancellationDate - cancellation date, YYYY-MM-DD; empty while enrolled.
	CancellationDate string `json:"cancellation_date,omitempty"`

	// Status - "enrolled" or "cancelled".
	Status string `json:"status"`

	// MonthlyFee - tuition per calendar month.
	MonthlyFee shared.Money `json:"monthly_fee"`

	// PaidTill - effective paid-through date, YYYY-MM-DD; empty when the
	// student has never paid.
	PaidTill string `json:"paid_till,omitempty"`

	// PendingMonths - whole billing cycles outstanding.
	PendingMonths int `json:"pending_months"`

	// PendingAmount - total outstanding amount.
	PendingAmount shared.Money `json:"pending_amount"`

	// NextDueDate - first day of the first unpaid cycle, YYYY-MM-DD.
	NextDueDate string `json:"next_due_date"`
}

// GetRosterResult contains the annotated roster page.
type GetRosterResult struct {
	// Entries - annotated roster rows.
	Entries []RosterEntryDTO `json:"entries"`

	// TotalCount - total students matching the filter, across all pages.
	TotalCount int `json:"total_count"`

	// OverdueCount - students on this page with at least one pending cycle.
	OverdueCount int `json:"overdue_count"`

	// TotalPending - sum of pending amounts on this page.
	TotalPending shared.Money `json:"total_pending"`

	// AsOf - the reference date the liability was computed for, YYYY-MM-DD.
	AsOf string `json:"as_of"`

	// GeneratedAt - result generation time.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetRosterHandler handles roster queries.
type GetRosterHandler struct {
	studentRepo student.Repository
	paymentRepo billing.Repository
	rosterCache billing.RosterCache
}

// NewGetRosterHandler creates a new GetRosterHandler. The cache is optional;
// a nil cache means every query recomputes the snapshot.
func NewGetRosterHandler(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
	rosterCache billing.RosterCache,
) *GetRosterHandler {
	return &GetRosterHandler{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		rosterCache: rosterCache,
	}
}

// Handle executes the roster query.
func (h *GetRosterHandler) Handle(ctx context.Context, query GetRosterQuery) (*GetRosterResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetRoster", shared.ErrValidation, err.Error(), err)
	}

	today := query.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = timeutil.StartOfDay(today)

	roster, err := h.loadAnnotatedRoster(ctx, today, query.IncludeCancelled)
	if err != nil {
		return nil, err
	}

	total := len(roster)
	pagination := shared.NewPagination(query.Page, query.PageSize)
	page := paginateAccounts(roster, pagination.Offset(), pagination.Limit())

	entries := make([]RosterEntryDTO, len(page))
	overdue := 0
	totalPending := shared.ZeroMoney
	for i, account := range page {
		entries[i] = toRosterEntryDTO(account)
		if account.IsOverdue() {
			overdue++
		}
		totalPending = totalPending.Add(account.Liability.PendingAmount)
	}

	return &GetRosterResult{
		Entries:      entries,
		TotalCount:   total,
		OverdueCount: overdue,
		TotalPending: totalPending,
		AsOf:         timeutil.FormatDateStr(today),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// loadAnnotatedRoster returns the full annotated roster for the reference
// date, served from the cache when a snapshot for that day exists.
func (h *GetRosterHandler) loadAnnotatedRoster(ctx context.Context, today time.Time, includeCancelled bool) ([]billing.StudentAccount, error) {
	if h.rosterCache != nil {
		if snapshot, err := h.rosterCache.GetSnapshot(ctx, today); err == nil && len(snapshot) > 0 {
			return filterCancelled(snapshot, includeCancelled), nil
		}
	}

	roster, err := AnnotateRoster(ctx, h.studentRepo, h.paymentRepo, today)
	if err != nil {
		return nil, err
	}

	if h.rosterCache != nil {
		// Best effort. A cold cache costs one recompute, nothing more.
		_ = h.rosterCache.SetSnapshot(ctx, today, roster)
	}

	return filterCancelled(roster, includeCancelled), nil
}

// AnnotateRoster loads every student with their payment history and computes
// liability for the reference date. This is the single roster-building path
// shared by the roster query, the liability query, the reminder query and the
// scheduler jobs.
func AnnotateRoster(ctx context.Context, studentRepo student.Repository, paymentRepo billing.Repository, today time.Time) ([]billing.StudentAccount, error) {
	students, err := studentRepo.List(ctx, student.ListOptions{
		Pagination:       shared.Pagination{Page: 1, PageSize: shared.MaxPageSize},
		IncludeCancelled: true,
	})
	if err != nil {
		return nil, shared.WrapError("query", "AnnotateRoster", shared.ErrExternalService, "failed to list students", err)
	}

	// Page through the full roster; the repository caps page size.
	all := students
	for page := 2; len(students) == shared.MaxPageSize; page++ {
		students, err = studentRepo.List(ctx, student.ListOptions{
			Pagination:       shared.Pagination{Page: page, PageSize: shared.MaxPageSize},
			IncludeCancelled: true,
		})
		if err != nil {
			return nil, shared.WrapError("query", "AnnotateRoster", shared.ErrExternalService, "failed to list students", err)
		}
		all = append(all, students...)
	}

	ids := make([]shared.StudentID, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}

	recordsByStudent, err := paymentRepo.ListByStudents(ctx, ids)
	if err != nil {
		return nil, shared.WrapError("query", "AnnotateRoster", shared.ErrExternalService, "failed to load payment records", err)
	}

	roster := make([]billing.StudentAccount, 0, len(all))
	for _, s := range all {
		account, err := billing.AnnotateAccount(s, recordsByStudent[s.ID], today)
		if err != nil {
			return nil, err
		}
		roster = append(roster, account)
	}

	return roster, nil
}

func filterCancelled(roster []billing.StudentAccount, includeCancelled bool) []billing.StudentAccount {
	if includeCancelled {
		return roster
	}
	filtered := make([]billing.StudentAccount, 0, len(roster))
	for _, account := range roster {
		if !account.Student.IsCancelled() {
			filtered = append(filtered, account)
		}
	}
	return filtered
}

func paginateAccounts(roster []billing.StudentAccount, offset, limit int) []billing.StudentAccount {
	if offset >= len(roster) {
		return []billing.StudentAccount{}
	}
	end := offset + limit
	if end > len(roster) {
		end = len(roster)
	}
	return roster[offset:end]
}

// toRosterEntryDTO converts an annotated account into its wire shape.
func toRosterEntryDTO(account billing.StudentAccount) RosterEntryDTO {
	s := account.Student

	dto := RosterEntryDTO{
		StudentID:     s.ID.String(),
		DisplayName:   s.DisplayName,
		Address:       s.Address,
		Phone:         s.Phone.String(),
		AdmissionDate: timeutil.FormatDateStr(s.AdmissionDate),
		Status:        string(s.Status()),
		MonthlyFee:    s.MonthlyFee,
		PendingMonths: account.Liability.PendingMonths,
		PendingAmount: account.Liability.PendingAmount,
		NextDueDate:   timeutil.FormatDateStr(account.NextDueDate()),
	}

	if s.CancellationDate != nil {
		dto.CancellationDate = timeutil.FormatDateStr(*s.CancellationDate)
	}
	if account.PaidThrough != nil {
		dto.PaidTill = timeutil.FormatDateStr(*account.PaidThrough)
	}

	return dto
}
