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
// GET STUDENT LIABILITY QUERY
// Returns one student's derived pending state for a reference date, together
// with the payment history the state was derived from.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentLiabilityQuery contains the request parameters.
type GetStudentLiabilityQuery struct {
	// StudentID - the student to inspect.
	StudentID shared.StudentID

	// Today - reference date for liability. Zero means the current UTC date.
	Today time.Time
}

// Validate validates the query parameters.
func (q GetStudentLiabilityQuery) Validate() error {
	if q.StudentID.IsEmpty() {
		return errors.New("student_id is required")
	}
	return nil
}

// PaymentRecordDTO is the wire shape of one payment record.
type PaymentRecordDTO struct {
	// PaymentID - record ID.
	PaymentID string `json:"payment_id"`

	// PaidThrough - settlement month-end date, YYYY-MM-DD.
	PaidThrough string `json:"paid_through"`

	// MonthsCleared - billing cycles this payment settled.
	MonthsCleared int `json:"months_cleared"`

	// Amount - the amount paid.
	Amount shared.Money `json:"amount"`

	// RecordedAt - when the record was created.
	RecordedAt time.Time `json:"recorded_at"`
}

// GetStudentLiabilityResult contains the derived state of one account.
type GetStudentLiabilityResult struct {
	// StudentID - the inspected student.
	StudentID string `json:"student_id"`

	// DisplayName - name shown on rosters and reminders.
	DisplayName string `json:"display_name"`

	// Status - "enrolled" or "cancelled".
	Status string `json:"status"`

	// MonthlyFee - tuition per calendar month.
	MonthlyFee shared.Money `json:"monthly_fee"`

	// FeeWaived - true when the fee is zero.
	FeeWaived bool `json:"fee_waived"`

	// PaidTill - effective paid-through date, YYYY-MM-DD; empty when never
	// paid.
	PaidTill string `json:"paid_till,omitempty"`

	// PendingMonths - whole billing cycles outstanding.
	PendingMonths int `json:"pending_months"`

	// PendingAmount - total outstanding amount.
	PendingAmount shared.Money `json:"pending_amount"`

	// NextDueDate - first day of the first unpaid cycle, YYYY-MM-DD.
	NextDueDate string `json:"next_due_date"`

	// Payments - full payment history, newest settlement last.
	Payments []PaymentRecordDTO `json:"payments"`

	// AsOf - the reference date, YYYY-MM-DD.
	AsOf string `json:"as_of"`
}

// GetStudentLiabilityHandler handles liability queries.
type GetStudentLiabilityHandler struct {
	studentRepo student.Repository
	paymentRepo billing.Repository
}

// NewGetStudentLiabilityHandler creates a new GetStudentLiabilityHandler.
func NewGetStudentLiabilityHandler(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
) *GetStudentLiabilityHandler {
	return &GetStudentLiabilityHandler{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
	}
}

// Handle executes the liability query.
func (h *GetStudentLiabilityHandler) Handle(ctx context.Context, query GetStudentLiabilityQuery) (*GetStudentLiabilityResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStudentLiability", shared.ErrValidation, err.Error(), err)
	}

	today := query.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = timeutil.StartOfDay(today)

	stud, err := h.studentRepo.GetByID(ctx, query.StudentID)
	if err != nil {
		return nil, err
	}

	records, err := h.paymentRepo.ListByStudent(ctx, stud.ID)
	if err != nil {
		return nil, shared.WrapError("query", "GetStudentLiability", shared.ErrExternalService, "failed to load payment records", err)
	}

	account, err := billing.AnnotateAccount(stud, records, today)
	if err != nil {
		return nil, err
	}

	payments := make([]PaymentRecordDTO, len(records))
	for i, r := range records {
		payments[i] = PaymentRecordDTO{
			PaymentID:     r.ID.String(),
			PaidThrough:   timeutil.FormatDateStr(r.PaidThrough),
			MonthsCleared: r.MonthsCleared,
			Amount:        r.Amount,
			RecordedAt:    r.RecordedAt,
		}
	}

	result := &GetStudentLiabilityResult{
		StudentID:     stud.ID.String(),
		DisplayName:   stud.DisplayName,
		Status:        string(stud.Status()),
		MonthlyFee:    stud.MonthlyFee,
		FeeWaived:     stud.HasFeeWaiver(),
		PendingMonths: account.Liability.PendingMonths,
		PendingAmount: account.Liability.PendingAmount,
		NextDueDate:   timeutil.FormatDateStr(account.NextDueDate()),
		Payments:      payments,
		AsOf:          timeutil.FormatDateStr(today),
	}

	if account.PaidThrough != nil {
		result.PaidTill = timeutil.FormatDateStr(*account.PaidThrough)
	}

	return result, nil
}
