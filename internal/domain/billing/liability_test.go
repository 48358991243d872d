package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

func money(t *testing.T, s string) shared.Money {
	t.Helper()
	m, err := shared.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func datePtr(d time.Time) *time.Time {
	return &d
}

func TestComputeLiability_FirstCycleNotYetDue(t *testing.T) {
	// Admitted 2024-01-15, never paid: the first cycle is due 2024-02-01,
	// so on 2024-01-20 nothing is owed yet.
	l, err := ComputeLiability(
		timeutil.Date(2024, time.January, 15),
		nil,
		money(t, "400"),
		timeutil.Date(2024, time.January, 20),
	)
	require.NoError(t, err)

	assert.Equal(t, 0, l.PendingMonths)
	assert.True(t, l.PendingAmount.IsZero())
	assert.True(t, l.IsSettled())
}

func TestComputeLiability_NeverPaidTwoCyclesElapsed(t *testing.T) {
	// Due month Feb counts in full from its first day, plus March: 2 cycles.
	l, err := ComputeLiability(
		timeutil.Date(2024, time.January, 15),
		nil,
		money(t, "400"),
		timeutil.Date(2024, time.March, 10),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, l.PendingMonths)
	assert.Equal(t, "800.00", l.PendingAmount.String())
}

func TestComputeLiability_PaidThroughMonthEnd(t *testing.T) {
	// Settled through March; on March 31 the April cycle has not started.
	l, err := ComputeLiability(
		timeutil.Date(2024, time.January, 15),
		datePtr(timeutil.Date(2024, time.March, 31)),
		money(t, "400"),
		timeutil.Date(2024, time.March, 31),
	)
	require.NoError(t, err)

	assert.Equal(t, 0, l.PendingMonths)

	// One day later the April cycle is due in full.
	l, err = ComputeLiability(
		timeutil.Date(2024, time.January, 15),
		datePtr(timeutil.Date(2024, time.March, 31)),
		money(t, "400"),
		timeutil.Date(2024, time.April, 1),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, l.PendingMonths)
	assert.Equal(t, "400.00", l.PendingAmount.String())
}

func TestComputeLiability_FeeWaiver(t *testing.T) {
	// Zero fee: cycles still accrue but the amount stays zero.
	l, err := ComputeLiability(
		timeutil.Date(2023, time.September, 1),
		nil,
		shared.ZeroMoney,
		timeutil.Date(2024, time.March, 10),
	)
	require.NoError(t, err)

	assert.Equal(t, 6, l.PendingMonths)
	assert.True(t, l.PendingAmount.IsZero())
}

func TestComputeLiability_FutureAdmission(t *testing.T) {
	// A student cannot owe fees before admission.
	l, err := ComputeLiability(
		timeutil.Date(2024, time.September, 1),
		nil,
		money(t, "400"),
		timeutil.Date(2024, time.March, 10),
	)
	require.NoError(t, err)

	assert.Equal(t, 0, l.PendingMonths)
	assert.True(t, l.PendingAmount.IsZero())
}

func TestComputeLiability_MissingAdmission(t *testing.T) {
	_, err := ComputeLiability(time.Time{}, nil, money(t, "400"), timeutil.Date(2024, time.March, 10))
	assert.ErrorIs(t, err, shared.ErrInvalidDate)
}

func TestComputeLiability_AmountExactness(t *testing.T) {
	// pendingAmount must equal pendingMonths x fee exactly, with 2-decimal
	// half-up rounding and no floating drift.
	fee := money(t, "333.335")
	assert.Equal(t, "333.34", fee.String()) // constructor rounds half-up

	l, err := ComputeLiability(
		timeutil.Date(2023, time.January, 10),
		nil,
		fee,
		timeutil.Date(2023, time.April, 2), // Feb, Mar, Apr pending
	)
	require.NoError(t, err)

	assert.Equal(t, 3, l.PendingMonths)
	assert.Equal(t, fee.MulInt(3), l.PendingAmount)
	assert.Equal(t, "1000.02", l.PendingAmount.String())
}

func TestComputeLiability_Idempotence(t *testing.T) {
	admission := timeutil.Date(2024, time.January, 15)
	paid := datePtr(timeutil.Date(2024, time.February, 29))
	fee := money(t, "250.50")
	today := timeutil.Date(2024, time.June, 7)

	first, err := ComputeLiability(admission, paid, fee, today)
	require.NoError(t, err)
	second, err := ComputeLiability(admission, paid, fee, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeLiability_MonotonicAsTimeAdvances(t *testing.T) {
	admission := timeutil.Date(2024, time.January, 15)
	fee := money(t, "400")

	prev := -1
	for day := timeutil.Date(2024, time.January, 1); day.Before(timeutil.Date(2025, time.June, 1)); day = day.AddDate(0, 0, 11) {
		l, err := ComputeLiability(admission, nil, fee, day)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, l.PendingMonths, prev, "pending months regressed at %s", timeutil.FormatDateStr(day))
		prev = l.PendingMonths
	}
}

func TestComputeLiability_TimeOfDayDoesNotShiftCycles(t *testing.T) {
	// 2024-03-31 23:59 UTC is still March; the April cycle must not leak in.
	admission := timeutil.Date(2024, time.January, 15)
	paid := datePtr(timeutil.Date(2024, time.March, 31))
	lateEvening := time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)

	l, err := ComputeLiability(admission, paid, money(t, "400"), lateEvening)
	require.NoError(t, err)
	assert.Equal(t, 0, l.PendingMonths)
}

func TestEffectivePaidThrough(t *testing.T) {
	sid := shared.StudentID(uuid.New().String())

	rec := func(d time.Time) *PaymentRecord {
		return &PaymentRecord{
			ID:          shared.PaymentID(uuid.New().String()),
			StudentID:   sid,
			PaidThrough: d,
		}
	}

	t.Run("no records", func(t *testing.T) {
		assert.Nil(t, EffectivePaidThrough(nil))
		assert.Nil(t, EffectivePaidThrough([]*PaymentRecord{}))
	})

	t.Run("maximum wins regardless of record order", func(t *testing.T) {
		// The newest record is not necessarily the furthest paid-through.
		records := []*PaymentRecord{
			rec(timeutil.Date(2024, time.April, 30)),
			rec(timeutil.Date(2024, time.June, 30)),
			rec(timeutil.Date(2024, time.February, 29)),
		}
		got := EffectivePaidThrough(records)
		require.NotNil(t, got)
		assert.Equal(t, timeutil.Date(2024, time.June, 30), *got)
	})
}

func TestAnnotateAccount(t *testing.T) {
	s := newTestStudent(t, timeutil.Date(2024, time.January, 15), "400")
	records := []*PaymentRecord{
		{ID: shared.PaymentID(uuid.New().String()), StudentID: s.ID, PaidThrough: timeutil.Date(2024, time.March, 31)},
	}

	account, err := AnnotateAccount(s, records, timeutil.Date(2024, time.May, 10))
	require.NoError(t, err)

	assert.Equal(t, timeutil.Date(2024, time.March, 31), a(account.PaidThrough))
	assert.Equal(t, timeutil.Date(2024, time.March, 31), account.Baseline())
	assert.Equal(t, timeutil.Date(2024, time.April, 1), account.NextDueDate())
	assert.True(t, account.IsOverdue())
	assert.Equal(t, 2, account.Liability.PendingMonths)
	assert.Equal(t, "800.00", account.Liability.PendingAmount.String())
}

func TestAnnotateAccount_NeverPaid(t *testing.T) {
	s := newTestStudent(t, timeutil.Date(2024, time.January, 15), "400")

	account, err := AnnotateAccount(s, nil, timeutil.Date(2024, time.January, 20))
	require.NoError(t, err)

	assert.Nil(t, account.PaidThrough)
	assert.Equal(t, timeutil.Date(2024, time.January, 15), account.Baseline())
	assert.Equal(t, timeutil.Date(2024, time.February, 1), account.NextDueDate())
	assert.False(t, account.IsOverdue())
}

func TestAnnotateAccount_CancellationStopsAccrual(t *testing.T) {
	s := newTestStudent(t, timeutil.Date(2024, time.January, 15), "400")
	require.NoError(t, s.Cancel(timeutil.Date(2024, time.March, 20)))

	// Arrears through the cancellation month stay owed, but months after it
	// never accrue.
	account, err := AnnotateAccount(s, nil, timeutil.Date(2024, time.September, 1))
	require.NoError(t, err)

	assert.True(t, account.IsOverdue())
	assert.Equal(t, 2, account.Liability.PendingMonths)
	assert.Equal(t, "800.00", account.Liability.PendingAmount.String())
}

func a(d *time.Time) time.Time {
	if d == nil {
		return time.Time{}
	}
	return *d
}
