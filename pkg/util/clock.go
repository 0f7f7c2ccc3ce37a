package util

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads so timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock returns t until Advance or Set moves it.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock { return &FixedClock{t: t} }

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// NowMillis returns the clock reading in Unix milliseconds.
func NowMillis(c Clock) int64 {
	if c == nil {
		c = RealClock{}
	}
	return c.Now().UnixMilli()
}
