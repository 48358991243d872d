package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Status reflects a student's enrolment state, derived from the cancellation
// date rather than stored separately so the two can never disagree.
type Status string

const (
	// StatusEnrolled - the student is enrolled and accrues fees.
	StatusEnrolled Status = "enrolled"
	// StatusCancelled - the enrolment has ended.
	StatusCancelled Status = "cancelled"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	return s == StatusEnrolled || s == StatusCancelled
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is the central entity of the system.
type Student struct {
	// ID - internal unique identifier (UUID in string form).
	ID shared.StudentID

	// DisplayName - name shown on rosters and reminders.
	DisplayName string

	// Address - optional postal address.
	Address string

	// Phone - optional guardian contact phone; used to render contact links.
	Phone shared.Phone

	// AdmissionDate - calendar date of admission. Always set. Billing starts
	// with the month after this date.
	AdmissionDate time.Time

	// CancellationDate - calendar date the enrolment ended, nil while
	// enrolled. Never before AdmissionDate.
	CancellationDate *time.Time

	// MonthlyFee - non-negative tuition per calendar month. Zero means the
	// fee is waived.
	MonthlyFee shared.Money

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams contains parameters for creating a new student.
type NewStudentParams struct {
	ID            shared.StudentID
	DisplayName   string
	Address       string
	Phone         shared.Phone
	AdmissionDate time.Time
	MonthlyFee    shared.Money
}

// NewStudent creates a new student, validating every field.
func NewStudent(params NewStudentParams) (*Student, error) {
	if !params.ID.IsValid() {
		return nil, shared.ErrInvalidStudentID
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, shared.ErrInvalidStudentName
	}

	if params.AdmissionDate.IsZero() {
		return nil, shared.ErrMissingAdmissionDate
	}

	if !params.Phone.IsEmpty() && !params.Phone.IsValid() {
		return nil, shared.NewDomainError("student", "Validate", shared.ErrInvalidFormat, "invalid contact phone")
	}

	now := time.Now().UTC()

	return &Student{
		ID:            params.ID,
		DisplayName:   displayName,
		Address:       strings.TrimSpace(params.Address),
		Phone:         params.Phone.Normalize(),
		AdmissionDate: timeutil.StartOfDay(params.AdmissionDate),
		MonthlyFee:    params.MonthlyFee,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Status derives the enrolment status from the cancellation date.
func (s *Student) Status() Status {
	if s.CancellationDate != nil {
		return StatusCancelled
	}
	return StatusEnrolled
}

// IsCancelled reports whether the enrolment has ended.
func (s *Student) IsCancelled() bool {
	return s.CancellationDate != nil
}

// IsAdmittedBy reports whether the student was already admitted on the given
// date. A student cannot owe fees before admission.
func (s *Student) IsAdmittedBy(today time.Time) bool {
	return !timeutil.StartOfDay(today).Before(s.AdmissionDate)
}

// HasFeeWaiver reports whether the monthly fee is waived.
func (s *Student) HasFeeWaiver() bool {
	return s.MonthlyFee.IsZero()
}

// Cancel ends the enrolment on the given date. The date is normalized to a
// calendar date and must not precede the admission date.
func (s *Student) Cancel(date time.Time) error {
	if s.CancellationDate != nil {
		return shared.ErrStudentAlreadyLeft
	}
	d := timeutil.StartOfDay(date)
	if d.Before(s.AdmissionDate) {
		return shared.ErrCancellationTooEarly
	}

	s.CancellationDate = &d
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateFee changes the monthly fee and returns the previous one.
// Negative fees never reach this method: Money cannot hold them.
func (s *Student) UpdateFee(fee shared.Money) shared.Money {
	old := s.MonthlyFee
	s.MonthlyFee = fee
	s.UpdatedAt = time.Now().UTC()
	return old
}

// UpdateContact replaces the address and phone.
func (s *Student) UpdateContact(address string, phone shared.Phone) error {
	if !phone.IsEmpty() && !phone.IsValid() {
		return shared.NewDomainError("student", "UpdateContact", shared.ErrInvalidFormat, "invalid contact phone")
	}
	s.Address = strings.TrimSpace(address)
	s.Phone = phone.Normalize()
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// String returns a compact representation for logging.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Name: %s, Admitted: %s, Fee: %s, Status: %s}",
		s.ID, s.DisplayName, timeutil.FormatDateStr(s.AdmissionDate), s.MonthlyFee, s.Status(),
	)
}

// Clone creates a deep copy of the student.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	if s.CancellationDate != nil {
		d := *s.CancellationDate
		clone.CancellationDate = &d
	}
	return &clone
}
