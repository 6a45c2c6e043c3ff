//go:build rp2350

package main

// RP2350 TIMER0 sits at a different address than the RP2040 timer, with
// the same raw register offsets.
const (
	timerBase     = 0x400B0000
	timerRawHAddr = timerBase + 0x24 // TIMERAWH
	timerRawLAddr = timerBase + 0x28 // TIMERAWL
)
