// internal/clock/clock.go

package clock

import (
	"sync"
	"time"
)

// Clock is the time source used by every expiry, quota and sweep computation
type Clock interface {
	Now() time.Time
}

// System reads the wall clock
type System struct{}

// Now returns the current time
func (System) Now() time.Time {
	return time.Now()
}

// Mock is a settable clock for tests
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock creates a mock clock fixed at t
func NewMock(t time.Time) *Mock {
	return &Mock{now: t}
}

// Now returns the mock's current time
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
