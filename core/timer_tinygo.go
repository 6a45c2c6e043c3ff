//go:build tinygo

package core

import "sync/atomic"

// Written from the tick interrupt or the main loop, read from task context.
var systemTicksValue uint32

func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicksValue)
}

func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicksValue, ticks)
}

// TickISR advances the system tick by one. Call it from a 1 kHz interrupt
// when the target has no free-running counter to sample.
func TickISR() {
	atomic.AddUint32(&systemTicksValue, 1)
}
