package kvstore

import (
	"sync"
	"time"
)

// Clock supplies the wall-clock timestamp a Store stamps onto a
// mutation and the log records that describe it. Grounded in the
// teacher's injectable-clock testability seam, adapted from a logical
// sequence counter to wall-clock epoch seconds since every txnlog
// Record's ts/updated_at field is a real timestamp, not a sequence
// number.
type Clock interface {
	Now() float64
}

type systemClock struct{}

func (systemClock) Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// FixedClock is a Clock returning a settable, fixed timestamp, for
// tests that need reproducible ts/updated_at values.
type FixedClock struct {
	mu  sync.Mutex
	now float64
}

// NewFixedClock creates a FixedClock starting at now.
func NewFixedClock(now float64) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set updates the timestamp future Now() calls will return.
func (c *FixedClock) Set(now float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
