package services

import "time"

// Clock supplies "now" so date windows can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func nowOf(c Clock) time.Time {
	if c == nil {
		return time.Now()
	}
	return c.Now()
}
