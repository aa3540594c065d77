package shared

import "time"

// Clock supplies the current time to entity operations. Injecting it keeps the
// monotonic-timestamp guarantee testable: a test clock can return the same
// instant twice and the tie-break below still produces strictly increasing
// modification times.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// NextAfter returns a timestamp from c that is strictly after prev. When the
// clock has not advanced past prev (coarse resolution, frozen test clocks),
// it falls back to prev plus one nanosecond.
func NextAfter(c Clock, prev time.Time) time.Time {
	now := c.Now()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
