// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Creates a roster entry for a newly admitted student. Billing for the first
// cycle starts with the month after the admission date.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data to register a student.
type RegisterStudentCommand struct {
	// DisplayName - name shown on rosters and reminders.
	DisplayName string

	// Address - optional postal address.
	Address string

	// Phone - optional guardian contact phone.
	Phone string

	// AdmissionDate - calendar date of admission, YYYY-MM-DD.
	AdmissionDate string

	// MonthlyFee - tuition per calendar month, decimal string. "0" records
	// a fee waiver.
	MonthlyFee string
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if c.DisplayName == "" {
		return errors.New("register_student: display_name is required")
	}
	if c.AdmissionDate == "" {
		return errors.New("register_student: admission_date is required")
	}
	if c.MonthlyFee == "" {
		return errors.New("register_student: monthly_fee is required")
	}
	return nil
}

// RegisterStudentResult contains the result of the registration.
type RegisterStudentResult struct {
	// StudentID - internal ID assigned to the student.
	StudentID shared.StudentID

	// FirstDueDate - first day of the first billing cycle.
	FirstDueDate time.Time

	// RegisteredAt - when the registration was persisted.
	RegisteredAt time.Time
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *RegisterStudentHandler {
	if eventPublisher == nil {
		eventPublisher = shared.NoopPublisher{}
	}
	return &RegisterStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_student: validation failed: %w", err)
	}

	// Boundary parsing. An unparseable date or fee is rejected here, never
	// coerced to a nearby value.
	admission, err := timeutil.ParseDate(cmd.AdmissionDate)
	if err != nil {
		return nil, shared.WrapError("student", "Register", shared.ErrInvalidDate, "invalid admission date", err)
	}

	fee, err := shared.MoneyFromString(cmd.MonthlyFee)
	if err != nil {
		if errors.Is(err, shared.ErrNegativeValue) {
			return nil, shared.ErrNegativeFee
		}
		return nil, err
	}

	phone, err := shared.NewPhone(cmd.Phone)
	if err != nil {
		return nil, err
	}

	stud, err := student.NewStudent(student.NewStudentParams{
		ID:            shared.StudentID(uuid.New().String()),
		DisplayName:   cmd.DisplayName,
		Address:       cmd.Address,
		Phone:         phone,
		AdmissionDate: admission,
		MonthlyFee:    fee,
	})
	if err != nil {
		return nil, err
	}

	if err := h.studentRepo.Create(ctx, stud); err != nil {
		return nil, fmt.Errorf("register_student: failed to create student: %w", err)
	}

	// Best-effort publish: the student is persisted, a lost event only delays
	// the roster cache refresh.
	event := shared.NewStudentRegisteredEvent(stud.ID, stud.DisplayName, stud.AdmissionDate, stud.MonthlyFee)
	_ = h.eventPublisher.Publish(ctx, event)

	return &RegisterStudentResult{
		StudentID:    stud.ID,
		FirstDueDate: timeutil.FirstOfNextMonth(stud.AdmissionDate),
		RegisteredAt: stud.CreatedAt,
	}, nil
}
