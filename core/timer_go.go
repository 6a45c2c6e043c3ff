//go:build !tinygo

package core

// On a host build nothing advances the tick behind the caller's back, so a
// plain word is enough.
var systemTicks uint32

func getSystemTicks() uint32 {
	return systemTicks
}

func setSystemTicks(ticks uint32) {
	systemTicks = ticks
}

// TickISR advances the system tick by one. Host builds use it to stand in
// for a periodic tick interrupt.
func TickISR() {
	systemTicks++
}
