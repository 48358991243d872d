package reminder

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/student"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// account builds an annotated account for the given admission/paid-through
// state as of `today`.
func account(t *testing.T, name string, admission time.Time, paidThrough *time.Time, today time.Time) billing.StudentAccount {
	t.Helper()

	fee, err := shared.MoneyFromString("400")
	require.NoError(t, err)

	s, err := student.NewStudent(student.NewStudentParams{
		ID:            shared.StudentID(uuid.New().String()),
		DisplayName:   name,
		AdmissionDate: admission,
		MonthlyFee:    fee,
	})
	require.NoError(t, err)

	var records []*billing.PaymentRecord
	if paidThrough != nil {
		records = append(records, &billing.PaymentRecord{
			ID:          shared.PaymentID(uuid.New().String()),
			StudentID:   s.ID,
			PaidThrough: *paidThrough,
		})
	}

	acc, err := billing.AnnotateAccount(s, records, today)
	require.NoError(t, err)
	return acc
}

func datePtr(d time.Time) *time.Time {
	return &d
}

func names(accounts []billing.StudentAccount) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Student.DisplayName)
	}
	return out
}

func TestDueWithin_Validation(t *testing.T) {
	for _, days := range []int{DueWithinWeek, DueWithinFortnight, DueWithinMonth} {
		w, err := DueWithin(days)
		require.NoError(t, err)
		assert.True(t, w.IsValid())
	}

	for _, days := range []int{0, 1, 10, 31, -7} {
		_, err := DueWithin(days)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, "days=%d", days)
	}
}

func TestSelectForReminder_OverdueAlwaysIncluded(t *testing.T) {
	today := timeutil.Date(2024, time.March, 28)

	// Two cycles overdue; a forward-looking window must not exclude them.
	overdue := account(t, "Behind", timeutil.Date(2024, time.January, 15), nil, today)
	require.True(t, overdue.IsOverdue())

	// Fully paid through March; next due date 2024-04-01 is 4 days away.
	paidUp := account(t, "Current", timeutil.Date(2023, time.September, 1),
		datePtr(timeutil.Date(2024, time.March, 31)), today)
	require.False(t, paidUp.IsOverdue())

	window, err := DueWithin(DueWithinWeek)
	require.NoError(t, err)

	got, err := SelectForReminder([]billing.StudentAccount{paidUp, overdue}, window, today)
	require.NoError(t, err)

	// Both returned, the overdue student first (earlier baseline).
	assert.Equal(t, []string{"Behind", "Current"}, names(got))
}

func TestSelectForReminder_AllPendingExcludesLookAhead(t *testing.T) {
	today := timeutil.Date(2024, time.March, 28)

	overdue := account(t, "Behind", timeutil.Date(2024, time.January, 15), nil, today)
	paidUp := account(t, "Current", timeutil.Date(2023, time.September, 1),
		datePtr(timeutil.Date(2024, time.March, 31)), today)

	got, err := SelectForReminder([]billing.StudentAccount{paidUp, overdue}, AllPending(), today)
	require.NoError(t, err)

	assert.Equal(t, []string{"Behind"}, names(got))
}

func TestSelectForReminder_LookAheadBoundaries(t *testing.T) {
	today := timeutil.Date(2024, time.March, 25)
	window, err := DueWithin(DueWithinWeek)
	require.NoError(t, err)

	// Next due 2024-04-01: exactly 7 days out, inside the inclusive window.
	onEdge := account(t, "OnEdge", timeutil.Date(2023, time.June, 1),
		datePtr(timeutil.Date(2024, time.March, 31)), today)

	// Next due 2024-05-01: beyond the window.
	farOut := account(t, "FarOut", timeutil.Date(2023, time.June, 1),
		datePtr(timeutil.Date(2024, time.April, 30)), today)

	got, err := SelectForReminder([]billing.StudentAccount{farOut, onEdge}, window, today)
	require.NoError(t, err)

	assert.Equal(t, []string{"OnEdge"}, names(got))
}

func TestSelectForReminder_OrderingByBaseline(t *testing.T) {
	today := timeutil.Date(2024, time.June, 10)

	// Never paid: baseline is the admission date, so the oldest admission
	// sorts first.
	oldest := account(t, "Oldest", timeutil.Date(2023, time.February, 1), nil, today)
	middle := account(t, "Middle", timeutil.Date(2023, time.November, 20), nil, today)
	newest := account(t, "Newest", timeutil.Date(2024, time.January, 15),
		datePtr(timeutil.Date(2024, time.March, 31)), today)

	got, err := SelectForReminder([]billing.StudentAccount{newest, middle, oldest}, AllPending(), today)
	require.NoError(t, err)

	assert.Equal(t, []string{"Oldest", "Middle", "Newest"}, names(got))
}

func TestSelectForReminder_CancelledOnlyWhileInArrears(t *testing.T) {
	today := timeutil.Date(2024, time.March, 28)
	window, err := DueWithin(DueWithinMonth)
	require.NoError(t, err)

	// Cancelled but still owing: stays on the list.
	inArrears := account(t, "OwesStill", timeutil.Date(2024, time.January, 15), nil, today)
	require.NoError(t, inArrears.Student.Cancel(timeutil.Date(2024, time.March, 1)))

	// Cancelled and settled: no future cycle will come due.
	settled := account(t, "Settled", timeutil.Date(2023, time.September, 1),
		datePtr(timeutil.Date(2024, time.March, 31)), today)
	require.NoError(t, settled.Student.Cancel(timeutil.Date(2024, time.March, 1)))

	got, err := SelectForReminder([]billing.StudentAccount{settled, inArrears}, window, today)
	require.NoError(t, err)

	assert.Equal(t, []string{"OwesStill"}, names(got))
}

func TestSelectForReminder_InvalidWindow(t *testing.T) {
	_, err := SelectForReminder(nil, Window{Kind: "sometime"}, timeutil.Date(2024, time.March, 28))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSelectForReminder_EmptyRoster(t *testing.T) {
	got, err := SelectForReminder(nil, AllPending(), timeutil.Date(2024, time.March, 28))
	require.NoError(t, err)
	assert.Empty(t, got)
}
