package core

import (
	"sync/atomic"
	"time"
)

// TimerFreq is the logical clock rate: one tick per millisecond.
const TimerFreq = 1000

// Time is a millisecond tick count. It wraps after about 49.7 days, so
// ordering is always decided on the signed difference of two values.
type Time uint32

// Add returns t advanced by ms milliseconds.
func (t Time) Add(ms uint32) Time {
	return t + Time(ms)
}

// Sub returns t-u in milliseconds.
func (t Time) Sub(u Time) int32 {
	return int32(t - u)
}

// Before reports whether t is strictly earlier than u.
func (t Time) Before(u Time) bool {
	return int32(t-u) < 0
}

// Reached reports whether deadline is at or before t.
func (t Time) Reached(deadline Time) bool {
	return int32(t-deadline) >= 0
}

// Until returns the time left before deadline, or zero if it has passed.
func (t Time) Until(deadline Time) time.Duration {
	d := int32(deadline - t)
	if d <= 0 {
		return 0
	}
	return time.Duration(d) * time.Millisecond
}

// TimerFromMS converts a duration to clock ticks, rounding down.
func TimerFromMS(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}

// GetTime returns the current system time in ticks
func GetTime() Time {
	return Time(getSystemTicks())
}

// SetTime sets the current system time. Targets call this from their main
// loop or tick interrupt with the hardware counter.
func SetTime(t Time) {
	setSystemTicks(uint32(t))
}

// Clock is the timer capability handed to the scheduler.
type Clock interface {
	Now() Time
}

// SystemClock reads the system tick set by the target.
type SystemClock struct{}

func (SystemClock) Now() Time {
	return GetTime()
}

// ManualClock only moves when told to. The simulator and tests drive it.
type ManualClock struct {
	now atomic.Uint32
}

// NewManualClock returns a clock reading start.
func NewManualClock(start Time) *ManualClock {
	c := &ManualClock{}
	c.now.Store(uint32(start))
	return c
}

func (c *ManualClock) Now() Time {
	return Time(c.now.Load())
}

// Set moves the clock to t.
func (c *ManualClock) Set(t Time) {
	c.now.Store(uint32(t))
}

// Advance moves the clock forward by ms milliseconds.
func (c *ManualClock) Advance(ms uint32) {
	c.now.Add(ms)
}
