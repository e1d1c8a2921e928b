// Package clock provides the monotonic time sources read by the rate
// limiters. Readings are seconds as float64; only differences between
// readings are meaningful.
package clock

import (
	"sync"
	"time"
)

// Clock returns a monotonically non-decreasing reading in seconds.
type Clock interface {
	Seconds() float64
}

// Func adapts a plain function to the Clock interface.
type Func func() float64

// Seconds calls f.
func (f Func) Seconds() float64 {
	return f()
}

// Monotonic reads Go's monotonic clock relative to its creation time.
type Monotonic struct {
	start time.Time
}

// NewMonotonic creates a Monotonic clock starting at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) Seconds() float64 {
	return time.Since(m.start).Seconds()
}

// Manual is a simulated clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now float64
}

// NewManual creates a Manual clock reading start seconds.
func NewManual(start float64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Seconds() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to an absolute reading. Setting it backwards is
// allowed so that callers can exercise clock anomalies.
func (m *Manual) Set(seconds float64) {
	m.mu.Lock()
	m.now = seconds
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d.Seconds()
	m.mu.Unlock()
}
