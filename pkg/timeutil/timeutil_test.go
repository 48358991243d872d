package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstOfNextMonth(t *testing.T) {
	assert.Equal(t, Date(2024, time.February, 1), FirstOfNextMonth(Date(2024, time.January, 15)))
	assert.Equal(t, Date(2024, time.February, 1), FirstOfNextMonth(Date(2024, time.January, 31)))
	// Year rollover.
	assert.Equal(t, Date(2025, time.January, 1), FirstOfNextMonth(Date(2024, time.December, 25)))
	// Time-of-day must not leak through.
	noon := time.Date(2024, time.June, 30, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, Date(2024, time.July, 1), FirstOfNextMonth(noon))
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, Date(2024, time.January, 31), LastDayOfMonth(Date(2024, time.January, 1)))
	assert.Equal(t, Date(2024, time.April, 30), LastDayOfMonth(Date(2024, time.April, 17)))
	// Leap year February.
	assert.Equal(t, Date(2024, time.February, 29), LastDayOfMonth(Date(2024, time.February, 2)))
	assert.Equal(t, Date(2023, time.February, 28), LastDayOfMonth(Date(2023, time.February, 2)))
	assert.Equal(t, Date(2024, time.December, 31), LastDayOfMonth(Date(2024, time.December, 31)))
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"same month", Date(2024, time.March, 1), Date(2024, time.March, 31), 0},
		{"adjacent days across boundary", Date(2024, time.January, 31), Date(2024, time.February, 1), 1},
		{"two months", Date(2024, time.February, 1), Date(2024, time.April, 10), 2},
		{"across year", Date(2023, time.November, 20), Date(2024, time.February, 3), 3},
		{"negative", Date(2024, time.May, 1), Date(2024, time.March, 15), -2},
		{"negative across year", Date(2024, time.January, 1), Date(2023, time.December, 31), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsBetween(tt.from, tt.to))
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	// Jan 31 + 1 month clamps to end of February instead of spilling to March.
	assert.Equal(t, Date(2024, time.February, 29), AddMonthsClamped(Date(2024, time.January, 31), 1))
	assert.Equal(t, Date(2023, time.February, 28), AddMonthsClamped(Date(2023, time.January, 31), 1))
	// No clamp needed when the day exists in the target month.
	assert.Equal(t, Date(2024, time.March, 15), AddMonthsClamped(Date(2024, time.January, 15), 2))
	// May 31 + 1 month clamps to June 30.
	assert.Equal(t, Date(2024, time.June, 30), AddMonthsClamped(Date(2024, time.May, 31), 1))
	// Backwards.
	assert.Equal(t, Date(2024, time.February, 29), AddMonthsClamped(Date(2024, time.March, 31), -1))
}

func TestStartOfDayNormalizesZone(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC; StartOfDay must agree
	// with the UTC calendar, not the local one.
	est := time.FixedZone("EST", -5*60*60)
	late := time.Date(2024, time.January, 31, 23, 30, 0, 0, est)
	assert.Equal(t, Date(2024, time.February, 1), StartOfDay(late))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, DaysBetween(Date(2024, time.March, 1), Date(2024, time.March, 4)))
	assert.Equal(t, -3, DaysBetween(Date(2024, time.March, 4), Date(2024, time.March, 1)))
	assert.Equal(t, 0, DaysBetween(Date(2024, time.March, 4), Date(2024, time.March, 4)))
	// Across the leap day.
	assert.Equal(t, 2, DaysBetween(Date(2024, time.February, 28), Date(2024, time.March, 1)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, Date(2024, time.February, 29), d)

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestSameMonth(t *testing.T) {
	assert.True(t, SameMonth(Date(2024, time.March, 1), Date(2024, time.March, 31)))
	assert.False(t, SameMonth(Date(2024, time.March, 31), Date(2024, time.April, 1)))
	assert.False(t, SameMonth(Date(2023, time.March, 1), Date(2024, time.March, 1)))
}
