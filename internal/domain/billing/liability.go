package billing

import (
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIABILITY CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════

// Liability is the derived pending state of one student account for a given
// "today". It is recomputed on every read and never persisted - a stored copy
// would go stale with the passage of time.
type Liability struct {
	// PendingMonths - number of whole billing cycles outstanding.
	PendingMonths int

	// PendingAmount - PendingMonths times the monthly fee, rounded to
	// 2 decimal places.
	PendingAmount shared.Money
}

// IsSettled reports whether nothing is outstanding.
func (l Liability) IsSettled() bool {
	return l.PendingMonths == 0
}

// ComputeLiability determines how many billing cycles are outstanding and the
// total amount owed.
//
// The baseline is the effective paid-through date, or the admission date when
// the student has never paid. The first unpaid cycle starts on the first day
// of the month after the baseline. The due month counts as one full pending
// cycle from its first day - billing is by whole month, never pro-rated.
//
// A zero fee is a waiver: the amount is zero no matter how many cycles are
// pending. An admission date in the future yields zero pending cycles.
func ComputeLiability(admission time.Time, paidThrough *time.Time, monthlyFee shared.Money, today time.Time) (Liability, error) {
	if admission.IsZero() {
		return Liability{}, shared.ErrMissingAdmissionDate
	}

	admission = timeutil.StartOfDay(admission)
	day := timeutil.StartOfDay(today)

	if admission.After(day) {
		return Liability{PendingAmount: shared.ZeroMoney}, nil
	}

	baseline := admission
	if paidThrough != nil {
		if paidThrough.IsZero() {
			return Liability{}, shared.ErrInvalidPaidThrough
		}
		baseline = timeutil.StartOfDay(*paidThrough)
	}

	nextDueMonthStart := timeutil.FirstOfNextMonth(baseline)
	if day.Before(nextDueMonthStart) {
		return Liability{PendingAmount: shared.ZeroMoney}, nil
	}

	pendingMonths := timeutil.MonthsBetween(nextDueMonthStart, day) + 1

	return Liability{
		PendingMonths: pendingMonths,
		PendingAmount: monthlyFee.MulInt(pendingMonths),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ANNOTATED STUDENT ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

// StudentAccount is a student annotated with derived billing state: the
// effective paid-through date and the current liability. This is the shape
// consumed by the reminder filter and the presentation collaborators.
type StudentAccount struct {
	Student *student.Student

	// PaidThrough - effective paid-through date, nil when never paid.
	PaidThrough *time.Time

	// Liability - pending state as of the reference date the account was
	// annotated for.
	Liability Liability
}

// Baseline returns the date liability accrues from: the effective
// paid-through date, or the admission date when the student has never paid.
func (a StudentAccount) Baseline() time.Time {
	if a.PaidThrough != nil {
		return timeutil.StartOfDay(*a.PaidThrough)
	}
	return timeutil.StartOfDay(a.Student.AdmissionDate)
}

// NextDueDate returns the first day of the first unpaid billing cycle.
func (a StudentAccount) NextDueDate() time.Time {
	return timeutil.FirstOfNextMonth(a.Baseline())
}

// IsOverdue reports whether at least one cycle is already pending.
func (a StudentAccount) IsOverdue() bool {
	return a.Liability.PendingMonths > 0
}

// AnnotateAccount builds the StudentAccount view for one student from their
// payment history and a reference date.
//
// For a cancelled student the reference date is clamped at the cancellation
// date: cancellation stops further accrual, while arrears owed up to it
// remain outstanding until settled.
func AnnotateAccount(s *student.Student, records []*PaymentRecord, today time.Time) (StudentAccount, error) {
	paidThrough := EffectivePaidThrough(records)

	ref := timeutil.StartOfDay(today)
	if s.CancellationDate != nil {
		if end := timeutil.StartOfDay(*s.CancellationDate); end.Before(ref) {
			ref = end
		}
	}

	liability, err := ComputeLiability(s.AdmissionDate, paidThrough, s.MonthlyFee, ref)
	if err != nil {
		return StudentAccount{}, err
	}

	return StudentAccount{
		Student:     s,
		PaidThrough: paidThrough,
		Liability:   liability,
	}, nil
}
