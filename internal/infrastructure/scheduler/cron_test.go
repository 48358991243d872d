package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression_Fields(t *testing.T) {
	tests := []struct {
		expr    string
		minutes []int
		hours   []int
	}{
		{"0 6 * * *", []int{0}, []int{6}},
		{"*/15 * * * *", []int{0, 15, 30, 45}, nil},
		{"0 8-10 * * *", []int{0}, []int{8, 9, 10}},
		{"30 6,18 * * *", []int{30}, []int{6, 18}},
	}

	for _, tt := range tests {
		ce, err := ParseCronExpression(tt.expr)
		require.NoError(t, err, "expr=%q", tt.expr)
		assert.Equal(t, tt.minutes, ce.minutes, "expr=%q", tt.expr)
		if tt.hours != nil {
			assert.Equal(t, tt.hours, ce.hours, "expr=%q", tt.expr)
		}
	}
}

func TestParseCronExpression_Invalid(t *testing.T) {
	for _, expr := range []string{
		"",
		"0 6 * *",
		"0 6 * * * *",
		"61 * * * *",
		"0 25 * * *",
		"*/0 * * * *",
	} {
		_, err := ParseCronExpression(expr)
		assert.Error(t, err, "expr=%q", expr)
	}
}

func TestCronExpression_Next(t *testing.T) {
	// The morning reminder run: every day at 06:00.
	ce := MustParseCronExpression(EveryDay6AM)

	next := ce.Next(time.Date(2024, time.March, 10, 5, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 10, 6, 0, 0, 0, time.UTC), next)

	// Past today's run, rolls over to tomorrow.
	next = ce.Next(time.Date(2024, time.March, 10, 6, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 11, 6, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_NextMidnightRefresh(t *testing.T) {
	ce := MustParseCronExpression(EveryDayMidnight)

	next := ce.Next(time.Date(2024, time.February, 28, 23, 59, 0, 0, time.UTC))
	// 2024 is a leap year; the snapshot rebuild still runs on the 29th.
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_NextFirstOfMonth(t *testing.T) {
	ce := MustParseCronExpression(FirstOfMonth)

	next := ce.Next(time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), next)
}
