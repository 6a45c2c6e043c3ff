//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"tinyco/core"
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerRawHAddr)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerRawLAddr)))
)

// GetHardwareUptime reads the full 64-bit microsecond timer
func GetHardwareUptime() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// hwClock is the scheduler clock: milliseconds since reset, read straight
// from the timer so it is fresh after every idle period. Each read also
// publishes the tick through core.SetTime.
type hwClock struct{}

func (hwClock) Now() core.Time {
	t := core.Time(GetHardwareUptime() / 1000)
	core.SetTime(t)
	return t
}
