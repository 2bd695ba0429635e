// ABOUTME: Shared playback clock
// ABOUTME: Lock-guarded time cursor advanced by the audio goroutine and seeked by callers
package playback

import "sync"

// Clock is the playback position in seconds. It is never negative.
// The audio goroutine and control goroutines share one Clock; every
// operation holds the lock for a single read or read-modify-write.
type Clock struct {
	mu sync.RWMutex
	t  float64
}

// NewClock creates a clock at the given position (clamped to 0)
func NewClock(t float64) *Clock {
	c := &Clock{}
	c.SetTime(t)
	return c
}

// Time returns the current position
func (c *Clock) Time() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// SetTime moves the clock to max(t, 0)
func (c *Clock) SetTime(t float64) {
	if !(t > 0) {
		// also catches NaN
		t = 0
	}
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by step and returns the new position
func (c *Clock) Advance(step float64) float64 {
	c.mu.Lock()
	c.t += step
	t := c.t
	c.mu.Unlock()
	return t
}

// Seek moves the clock by delta in one step, clamping at 0, and returns the new position
func (c *Clock) Seek(delta float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t + delta
	if !(t > 0) {
		t = 0
	}
	c.t = t
	return t
}
