package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(30 * time.Minute)

	base := time.Date(2024, time.March, 10, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(30*time.Minute), s.Next(base))
	assert.Equal(t, "@every 30m0s", s.String())
}

func TestParseSchedule_Interval(t *testing.T) {
	sched, err := ParseSchedule("@every 12h")
	require.NoError(t, err)

	interval, ok := sched.(*IntervalSchedule)
	require.True(t, ok)
	assert.Equal(t, 12*time.Hour, interval.Interval)
}

func TestParseSchedule_Cron(t *testing.T) {
	sched, err := ParseSchedule("0 6 * * *")
	require.NoError(t, err)

	_, ok := sched.(*CronExpression)
	require.True(t, ok)

	next := sched.Next(time.Date(2024, time.March, 10, 5, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 10, 6, 0, 0, 0, time.UTC), next)
}

func TestParseSchedule_Invalid(t *testing.T) {
	for _, expr := range []string{
		"@every",
		"@every banana",
		"@every -5m",
		"@every 0s",
		"not a schedule",
	} {
		_, err := ParseSchedule(expr)
		assert.Error(t, err, "expr=%q", expr)
	}
}
