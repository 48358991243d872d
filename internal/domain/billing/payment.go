package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT RECORD
// ══════════════════════════════════════════════════════════════════════════════

// PaymentRecord is an immutable settlement fact: the student's account is
// settled for all billing cycles up to and including the month containing
// PaidThrough. Records are never updated; a later payment adds a new record
// with a later paid-through date.
type PaymentRecord struct {
	// ID - unique identifier (UUID in string form).
	ID shared.PaymentID

	// StudentID - the student this record belongs to.
	StudentID shared.StudentID

	// PaidThrough - the settlement date. By convention this is always a
	// month-end date, matching what PlanPaidThrough produces.
	PaidThrough time.Time

	// MonthsCleared - how many billing cycles this payment cleared.
	MonthsCleared int

	// Amount - the amount paid.
	Amount shared.Money

	// RecordedAt - when the record was created.
	RecordedAt time.Time
}

// NewPaymentRecordParams contains parameters for creating a payment record.
type NewPaymentRecordParams struct {
	ID            shared.PaymentID
	StudentID     shared.StudentID
	PaidThrough   time.Time
	AdmissionDate time.Time
	MonthsCleared int
	Amount        shared.Money
}

// NewPaymentRecord creates a payment record, validating every field.
func NewPaymentRecord(params NewPaymentRecordParams) (*PaymentRecord, error) {
	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("billing", "NewPaymentRecord", shared.ErrInvalidID, "invalid payment ID")
	}
	if !params.StudentID.IsValid() {
		return nil, shared.ErrInvalidStudentID
	}
	if params.PaidThrough.IsZero() {
		return nil, shared.ErrInvalidPaidThrough
	}
	if !params.AdmissionDate.IsZero() && params.PaidThrough.Before(timeutil.StartOfDay(params.AdmissionDate)) {
		return nil, shared.ErrLiabilityBeforeAdmission
	}
	if params.MonthsCleared < 1 {
		return nil, shared.ErrMonthsToClearOutOfRange
	}

	return &PaymentRecord{
		ID:            params.ID,
		StudentID:     params.StudentID,
		PaidThrough:   timeutil.StartOfDay(params.PaidThrough),
		MonthsCleared: params.MonthsCleared,
		Amount:        params.Amount,
		RecordedAt:    time.Now().UTC(),
	}, nil
}

// String returns a compact representation for logging.
func (p *PaymentRecord) String() string {
	return fmt.Sprintf(
		"PaymentRecord{ID: %s, Student: %s, PaidThrough: %s, Amount: %s}",
		p.ID, p.StudentID, timeutil.FormatDateStr(p.PaidThrough), p.Amount,
	)
}

// EffectivePaidThrough derives the effective paid-through date from a
// student's payment history: the maximum PaidThrough across all records, not
// the most recently created one. Returns nil when the student has never paid.
func EffectivePaidThrough(records []*PaymentRecord) *time.Time {
	var max *time.Time
	for _, r := range records {
		if r == nil {
			continue
		}
		d := timeutil.StartOfDay(r.PaidThrough)
		if max == nil || d.After(*max) {
			max = &d
		}
	}
	return max
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the persistence contract for payment records.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create stores a new payment record. Records are immutable; there is no
	// update operation.
	Create(ctx context.Context, record *PaymentRecord) error

	// ListByStudent returns all payment records of one student.
	ListByStudent(ctx context.Context, studentID shared.StudentID) ([]*PaymentRecord, error)

	// ListByStudents returns the payment records of many students at once,
	// keyed by student ID. Used to annotate a whole roster in one round trip.
	ListByStudents(ctx context.Context, studentIDs []shared.StudentID) (map[shared.StudentID][]*PaymentRecord, error)
}
