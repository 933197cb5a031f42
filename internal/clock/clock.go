// Package clock provides a mockable time source for testing.
// In production RealClock wraps time.Now(). For tests, use MockClock.
//
// Archive timestamps:
//
//	ZIP members cannot carry times before 1980 and store them with two
//	second precision. Use ArchiveTime to normalise a time before it is
//	written into a bundle or compared against one.
package clock

import (
	"sync"
	"time"
)

// MinArchiveYear is the earliest year a ZIP member can record.
const MinArchiveYear = 1980

// Clock is the interface for time operations. Inject a MockClock for testing.
type Clock interface {
	Now() time.Time
}

// --- Real Clock (simple wrapper) ---

// RealClock provides the actual system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// --- Mock Clock (for testing) ---

// MockClock is a test clock with controllable time.
type MockClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMockClock creates a mock clock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mock time.
func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set sets the mock time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance advances the mock time by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// --- Utilities ---

// ArchiveTime clamps t to the range a ZIP member can hold and truncates it to
// two second precision. The location is preserved.
func ArchiveTime(t time.Time) time.Time {
	floor := time.Date(MinArchiveYear, 1, 1, 0, 0, 0, 0, t.Location())
	if t.Before(floor) {
		return floor
	}
	t = t.Truncate(time.Second)
	if t.Second()%2 == 1 {
		t = t.Add(-time.Second)
	}
	return t
}

// BackupStamp formats t the way automatic backup names embed it.
func BackupStamp(t time.Time) string {
	return t.Format("20060102-150405")
}
