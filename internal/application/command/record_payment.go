package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD PAYMENT COMMAND
// Clears N billing cycles for a student: plans the new paid-through date,
// prices the payment at N times the current monthly fee, and appends an
// immutable payment record.
// ══════════════════════════════════════════════════════════════════════════════

// RecordPaymentCommand contains the data to record a payment.
type RecordPaymentCommand struct {
	// StudentID - the paying student.
	StudentID shared.StudentID

	// MonthsToClear - number of billing cycles this payment settles. Must be
	// at least 1.
	MonthsToClear int

	// Today - reference date for the paid-through plan. Zero means the
	// current UTC date.
	Today time.Time
}

// Validate validates the command.
func (c RecordPaymentCommand) Validate() error {
	if c.StudentID.IsEmpty() {
		return errors.New("record_payment: student_id is required")
	}
	if c.MonthsToClear < 1 {
		return shared.ErrMonthsToClearOutOfRange
	}
	return nil
}

// RecordPaymentResult contains the result of recording the payment.
type RecordPaymentResult struct {
	// PaymentID - ID of the new payment record.
	PaymentID shared.PaymentID

	// PaidThrough - the account is now settled through this month-end date.
	PaidThrough time.Time

	// Amount - the amount charged: months cleared times the monthly fee.
	Amount shared.Money

	// Liability - the remaining pending state after this payment, as of Today.
	Liability billing.Liability
}

// RecordPaymentHandler handles the RecordPaymentCommand.
type RecordPaymentHandler struct {
	studentRepo    student.Repository
	paymentRepo    billing.Repository
	eventPublisher shared.EventPublisher
}

// NewRecordPaymentHandler creates a new RecordPaymentHandler.
func NewRecordPaymentHandler(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
	eventPublisher shared.EventPublisher,
) *RecordPaymentHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}
	return &RecordPaymentHandler{
		studentRepo:    studentRepo,
		paymentRepo:    paymentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the command.
func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*RecordPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	today := cmd.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	today = timeutil.StartOfDay(today)

	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("record_payment: failed to load student: %w", err)
	}

	records, err := h.paymentRepo.ListByStudent(ctx, stud.ID)
	if err != nil {
		return nil, fmt.Errorf("record_payment: failed to load payment history: %w", err)
	}

	paidThrough := billing.EffectivePaidThrough(records)

	newPaidThrough, err := billing.PlanPaidThrough(stud.AdmissionDate, paidThrough, cmd.MonthsToClear, today)
	if err != nil {
		return nil, err
	}

	record, err := billing.NewPaymentRecord(billing.NewPaymentRecordParams{
		ID:            shared.PaymentID(uuid.New().String()),
		StudentID:     stud.ID,
		PaidThrough:   newPaidThrough,
		AdmissionDate: stud.AdmissionDate,
		MonthsCleared: cmd.MonthsToClear,
		Amount:        stud.MonthlyFee.MulInt(cmd.MonthsToClear),
	})
	if err != nil {
		return nil, err
	}

	if err := h.paymentRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record_payment: failed to store payment record: %w", err)
	}

	// The remaining liability after the payment, with the new record folded
	// into the effective paid-through date.
	liability, err := billing.ComputeLiability(stud.AdmissionDate, &record.PaidThrough, stud.MonthlyFee, today)
	if err != nil {
		return nil, err
	}

	event := shared.NewPaymentRecordedEvent(stud.ID, record.ID, record.PaidThrough, record.MonthsCleared, record.Amount)
	_ = h.eventPublisher.Publish(ctx, event)

	return &RecordPaymentResult{
		PaymentID:   record.ID,
		PaidThrough: record.PaidThrough,
		Amount:      record.Amount,
		Liability:   liability,
	}, nil
}
