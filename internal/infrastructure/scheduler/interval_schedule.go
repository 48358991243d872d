package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// IntervalSchedule runs a job at a fixed interval, anchored to the previous
// run rather than the wall clock. Operators pick it over a cron expression
// when the cadence matters more than the time of day.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// ParseSchedule parses a schedule expression. Two forms are accepted:
//   - "@every <duration>" - a fixed interval, e.g. "@every 30m"
//   - a 5-field cron expression, e.g. "0 6 * * *"
func ParseSchedule(expr string) (Schedule, error) {
	if rest, ok := strings.CutPrefix(expr, "@every"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", strings.TrimSpace(rest), err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %s", d)
		}
		return NewIntervalSchedule(d), nil
	}

	return ParseCronExpression(expr)
}
