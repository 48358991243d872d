package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE MONTHLY FEE COMMAND
// Changes a student's monthly fee. The new fee applies to every cycle priced
// after the change, including cycles already pending: liability is derived on
// read from the current fee, never frozen per month.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateMonthlyFeeCommand contains the data to change a fee.
type UpdateMonthlyFeeCommand struct {
	// StudentID - the student whose fee changes.
	StudentID shared.StudentID

	// MonthlyFee - the new fee, decimal string. "0" waives the fee.
	MonthlyFee string
}

// Validate validates the command.
func (c UpdateMonthlyFeeCommand) Validate() error {
	if c.StudentID.IsEmpty() {
		return errors.New("update_fee: student_id is required")
	}
	if c.MonthlyFee == "" {
		return errors.New("update_fee: monthly_fee is required")
	}
	return nil
}

// UpdateMonthlyFeeResult contains the result of the fee change.
type UpdateMonthlyFeeResult struct {
	// OldFee - the fee before the change.
	OldFee shared.Money

	// NewFee - the fee now in effect.
	NewFee shared.Money
}

// UpdateMonthlyFeeHandler handles the UpdateMonthlyFeeCommand.
type UpdateMonthlyFeeHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewUpdateMonthlyFeeHandler creates a new UpdateMonthlyFeeHandler.
func NewUpdateMonthlyFeeHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *UpdateMonthlyFeeHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}
	return &UpdateMonthlyFeeHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the command.
func (h *UpdateMonthlyFeeHandler) Handle(ctx context.Context, cmd UpdateMonthlyFeeCommand) (*UpdateMonthlyFeeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_fee: validation failed: %w", err)
	}

	fee, err := shared.MoneyFromString(cmd.MonthlyFee)
	if err != nil {
		if errors.Is(err, shared.ErrNegativeValue) {
			return nil, shared.ErrNegativeFee
		}
		return nil, err
	}

	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("update_fee: failed to load student: %w", err)
	}

	// Accrual is frozen at cancellation; repricing an ended enrolment would
	// silently rewrite the arrears already owed.
	if stud.IsCancelled() {
		return nil, shared.ErrStudentNotBillable
	}

	old := stud.UpdateFee(fee)

	if err := h.studentRepo.Update(ctx, stud); err != nil {
		return nil, fmt.Errorf("update_fee: failed to update student: %w", err)
	}

	_ = h.eventPublisher.Publish(ctx, shared.NewFeeChangedEvent(stud.ID, old, fee))

	return &UpdateMonthlyFeeResult{OldFee: old, NewFee: fee}, nil
}
