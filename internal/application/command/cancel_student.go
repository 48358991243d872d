package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL STUDENT COMMAND
// Ends an enrolment. Cancellation stops future accrual but never erases
// arrears: a cancelled student keeps appearing on reminder lists until the
// outstanding cycles are settled.
// ══════════════════════════════════════════════════════════════════════════════

// CancelStudentCommand contains the data to cancel an enrolment.
type CancelStudentCommand struct {
	// StudentID - the student leaving.
	StudentID shared.StudentID

	// CancellationDate - calendar date the enrolment ends, YYYY-MM-DD.
	CancellationDate string
}

// Validate validates the command.
func (c CancelStudentCommand) Validate() error {
	if c.StudentID.IsEmpty() {
		return errors.New("cancel_student: student_id is required")
	}
	if c.CancellationDate == "" {
		return errors.New("cancel_student: cancellation_date is required")
	}
	return nil
}

// CancelStudentResult contains the result of the cancellation.
type CancelStudentResult struct {
	// CancelledOn - the recorded cancellation date.
	CancelledOn time.Time

	// OutstandingLiability - arrears still owed at cancellation time.
	OutstandingLiability billing.Liability
}

// CancelStudentHandler handles the CancelStudentCommand.
type CancelStudentHandler struct {
	studentRepo    student.Repository
	paymentRepo    billing.Repository
	eventPublisher shared.EventPublisher
}

// NewCancelStudentHandler creates a new CancelStudentHandler.
func NewCancelStudentHandler(
	studentRepo student.Repository,
	paymentRepo billing.Repository,
	eventPublisher shared.EventPublisher,
) *CancelStudentHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}
	return &CancelStudentHandler{
		studentRepo:    studentRepo,
		paymentRepo:    paymentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the command.
func (h *CancelStudentHandler) Handle(ctx context.Context, cmd CancelStudentCommand) (*CancelStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("cancel_student: validation failed: %w", err)
	}

	date, err := timeutil.ParseDate(cmd.CancellationDate)
	if err != nil {
		return nil, shared.WrapError("student", "Cancel", shared.ErrInvalidDate, "invalid cancellation date", err)
	}

	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("cancel_student: failed to load student: %w", err)
	}

	if err := stud.Cancel(date); err != nil {
		return nil, err
	}

	if err := h.studentRepo.Update(ctx, stud); err != nil {
		return nil, fmt.Errorf("cancel_student: failed to update student: %w", err)
	}

	records, err := h.paymentRepo.ListByStudent(ctx, stud.ID)
	if err != nil {
		return nil, fmt.Errorf("cancel_student: failed to load payment history: %w", err)
	}

	liability, err := billing.ComputeLiability(
		stud.AdmissionDate,
		billing.EffectivePaidThrough(records),
		stud.MonthlyFee,
		*stud.CancellationDate,
	)
	if err != nil {
		return nil, err
	}

	_ = h.eventPublisher.Publish(ctx, shared.NewStudentCancelledEvent(stud.ID, *stud.CancellationDate))

	return &CancelStudentResult{
		CancelledOn:          *stud.CancellationDate,
		OutstandingLiability: liability,
	}, nil
}
