package testutil

import (
	"sync"
	"time"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// Clock is a settable clock for services under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock fixed at date (YYYY-MM-DD) and clock (HH:MM:SS),
// local time. It panics on malformed input.
func NewClock(date, clock string) *Clock {
	t, err := time.ParseInLocation(domain.DateLayout+" "+domain.TimeLayout, date+" "+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return &Clock{now: t}
}

// Now returns the current fixed time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NextDay moves the clock forward 24 hours.
func (c *Clock) NextDay() {
	c.Advance(24 * time.Hour)
}
