package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

func newTestStudent(t *testing.T, admission time.Time, fee string) *student.Student {
	t.Helper()
	m, err := shared.MoneyFromString(fee)
	require.NoError(t, err)
	s, err := student.NewStudent(student.NewStudentParams{
		ID:            shared.StudentID(uuid.New().String()),
		DisplayName:   "Test Student",
		AdmissionDate: admission,
		MonthlyFee:    m,
	})
	require.NoError(t, err)
	return s
}

func TestPlanPaidThrough_ClearThreeMonths(t *testing.T) {
	// Paid through March, today is April 5: the baseline month (March) is in
	// the past, so clearing starts with April and covers Apr-May-Jun.
	got, err := PlanPaidThrough(
		timeutil.Date(2024, time.January, 15),
		datePtr(timeutil.Date(2024, time.March, 31)),
		3,
		timeutil.Date(2024, time.April, 5),
	)
	require.NoError(t, err)
	assert.Equal(t, timeutil.Date(2024, time.June, 30), got)
}

func TestPlanPaidThrough_NeverPaid(t *testing.T) {
	// Never paid: baseline is the admission month. On 2024-01-20 that month
	// has started, so one month clears February.
	got, err := PlanPaidThrough(
		timeutil.Date(2024, time.January, 15),
		nil,
		1,
		timeutil.Date(2024, time.January, 20),
	)
	require.NoError(t, err)
	assert.Equal(t, timeutil.Date(2024, time.February, 29), got)
}

func TestPlanPaidThrough_MonthEndConvention(t *testing.T) {
	// Results are always month-end dates, leap year included.
	got, err := PlanPaidThrough(
		timeutil.Date(2023, time.December, 1),
		datePtr(timeutil.Date(2023, time.December, 31)),
		2,
		timeutil.Date(2024, time.January, 10),
	)
	require.NoError(t, err)
	assert.Equal(t, timeutil.Date(2024, time.February, 29), got)
}

func TestPlanPaidThrough_OutOfRange(t *testing.T) {
	for _, n := range []int{0, -1, -12} {
		_, err := PlanPaidThrough(
			timeutil.Date(2024, time.January, 15),
			nil,
			n,
			timeutil.Date(2024, time.April, 5),
		)
		assert.ErrorIs(t, err, shared.ErrValueOutOfRange, "monthsToClear=%d", n)
	}
}

func TestPlanPaidThrough_MissingAdmission(t *testing.T) {
	_, err := PlanPaidThrough(time.Time{}, nil, 1, timeutil.Date(2024, time.April, 5))
	assert.ErrorIs(t, err, shared.ErrInvalidDate)
}

func TestPlanPaidThrough_RoundTripWithCalculator(t *testing.T) {
	// Feeding the planner's output back into the calculator with the same
	// "today" yields zero pending cycles, for any valid months-to-clear.
	admission := timeutil.Date(2023, time.June, 10)
	fee, err := shared.MoneyFromString("325")
	require.NoError(t, err)

	cases := []struct {
		name        string
		paidThrough *time.Time
		today       time.Time
	}{
		{"never paid, overdue", nil, timeutil.Date(2024, time.March, 10)},
		{"paid up, month end", datePtr(timeutil.Date(2024, time.March, 31)), timeutil.Date(2024, time.March, 31)},
		{"behind several cycles", datePtr(timeutil.Date(2023, time.October, 31)), timeutil.Date(2024, time.April, 5)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for n := 1; n <= 6; n++ {
				planned, err := PlanPaidThrough(admission, tc.paidThrough, n, tc.today)
				require.NoError(t, err)

				l, err := ComputeLiability(admission, &planned, fee, tc.today)
				require.NoError(t, err)
				assert.Equal(t, 0, l.PendingMonths, "n=%d planned=%s", n, timeutil.FormatDateStr(planned))

				// Accrual resumes on schedule: one day into the month after
				// the planned month, exactly one cycle is pending again.
				resume := timeutil.FirstOfNextMonth(planned)
				l, err = ComputeLiability(admission, &planned, fee, resume)
				require.NoError(t, err)
				assert.Equal(t, 1, l.PendingMonths, "n=%d resume=%s", n, timeutil.FormatDateStr(resume))
			}
		})
	}
}

func TestPlanPaidThrough_CoversExactlyRequestedMonths(t *testing.T) {
	// Clearing n months moves the paid-through month pointer exactly n months
	// past the first unpaid cycle.
	paid := datePtr(timeutil.Date(2024, time.March, 31))
	today := timeutil.Date(2024, time.April, 5)

	for n := 1; n <= 12; n++ {
		got, err := PlanPaidThrough(timeutil.Date(2024, time.January, 15), paid, n, today)
		require.NoError(t, err)

		wantMonth := timeutil.Date(2024, time.April, 1).AddDate(0, n-1, 0)
		assert.Equal(t, timeutil.LastDayOfMonth(wantMonth), got, "n=%d", n)
	}
}
