//go:build rp2040

package main

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerRawHAddr = timerBase + 0x24 // TIMERAWH
	timerRawLAddr = timerBase + 0x28 // TIMERAWL
)
