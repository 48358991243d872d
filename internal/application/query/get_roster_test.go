package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuition-hub/tuition-fee-hub/internal/domain/billing"
)

func TestGetRoster_AnnotatesEveryEntry(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()
	today := date(2024, time.March, 28)

	// Never paid since mid-January admission: Feb and Mar pending.
	behindID := seedStudent(t, students, payments, "Behind", date(2024, time.January, 15), "400", nil)

	// Paid through March: nothing pending, next due 2024-04-01.
	seedStudent(t, students, payments, "Current", date(2023, time.September, 1), "500",
		datePtr(date(2024, time.March, 31)))

	handler := NewGetRosterHandler(students, payments, nil)
	result, err := handler.Handle(context.Background(), GetRosterQuery{Today: today})
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.OverdueCount)
	assert.Equal(t, "800.00", result.TotalPending.String())
	assert.Equal(t, "2024-03-28", result.AsOf)

	behind := result.Entries[0]
	assert.Equal(t, behindID.String(), behind.StudentID)
	assert.Equal(t, 2, behind.PendingMonths)
	assert.Equal(t, "800.00", behind.PendingAmount.String())
	assert.Empty(t, behind.PaidTill)
	assert.Equal(t, "2024-02-01", behind.NextDueDate)

	current := result.Entries[1]
	assert.Equal(t, 0, current.PendingMonths)
	assert.Equal(t, "2024-03-31", current.PaidTill)
	assert.Equal(t, "2024-04-01", current.NextDueDate)
}

func TestGetRoster_CancelledFilter(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()
	today := date(2024, time.June, 10)

	seedStudent(t, students, payments, "Active", date(2024, time.January, 15), "400", nil)

	leftID := seedStudent(t, students, payments, "Left", date(2023, time.September, 1), "400",
		datePtr(date(2024, time.March, 31)))
	left, err := students.GetByID(context.Background(), leftID)
	require.NoError(t, err)
	require.NoError(t, left.Cancel(date(2024, time.March, 31)))
	require.NoError(t, students.Update(context.Background(), left))

	handler := NewGetRosterHandler(students, payments, nil)

	result, err := handler.Handle(context.Background(), GetRosterQuery{Today: today})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Active", result.Entries[0].DisplayName)

	result, err = handler.Handle(context.Background(), GetRosterQuery{Today: today, IncludeCancelled: true})
	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
}

func TestGetRoster_Pagination(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		seedStudent(t, students, payments, name, date(2024, time.January, 15), "400", nil)
	}

	handler := NewGetRosterHandler(students, payments, nil)
	result, err := handler.Handle(context.Background(), GetRosterQuery{
		Today:    date(2024, time.March, 28),
		Page:     2,
		PageSize: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalCount)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "C", result.Entries[0].DisplayName)
	assert.Equal(t, "D", result.Entries[1].DisplayName)
}

// staticCache serves a fixed snapshot for one day and records writes.
type staticCache struct {
	day      time.Time
	snapshot []billing.StudentAccount
	sets     int
}

func (c *staticCache) GetSnapshot(_ context.Context, day time.Time) ([]billing.StudentAccount, error) {
	if c.snapshot != nil && day.Equal(c.day) {
		return c.snapshot, nil
	}
	return nil, context.Canceled
}

func (c *staticCache) SetSnapshot(_ context.Context, day time.Time, roster []billing.StudentAccount) error {
	c.day = day
	c.snapshot = roster
	c.sets++
	return nil
}

func (c *staticCache) Invalidate(_ context.Context) error {
	c.snapshot = nil
	return nil
}

func TestGetRoster_CacheRoundTrip(t *testing.T) {
	students := newMemStudentRepo()
	payments := newMemPaymentRepo()
	today := date(2024, time.March, 28)

	seedStudent(t, students, payments, "Behind", date(2024, time.January, 15), "400", nil)

	cache := &staticCache{}
	handler := NewGetRosterHandler(students, payments, cache)

	// First query computes and stores the snapshot.
	_, err := handler.Handle(context.Background(), GetRosterQuery{Today: today})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second query for the same day is served from the cache.
	result, err := handler.Handle(context.Background(), GetRosterQuery{Today: today})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Len(t, result.Entries, 1)
}
