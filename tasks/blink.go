// Package tasks holds the long-lived activities the example applications are
// built from. Each task is an explicit state machine: Step does a bounded
// amount of work and returns the condition it waits on next.
package tasks

import (
	"tinyco/core"
)

// Default blink timing.
const (
	BlinkOnMS  = 200
	BlinkOffMS = 800
)

// Blink drives an LED with a fixed on/off pattern and logs each turn-on.
// Deadlines advance from the previous deadline, not from the time the task
// happened to run, so the pattern does not drift under load.
type Blink struct {
	led   core.OutputPin
	log   *core.TaskLog
	onMS  uint32
	offMS uint32

	on      bool
	started bool
	next    core.Time
	blinks  uint32
}

// NewBlink returns a blinker with the given on and off times. Zero values
// fall back to 200/800 ms.
func NewBlink(led core.OutputPin, onMS, offMS uint32, log *core.TaskLog) *Blink {
	if onMS == 0 {
		onMS = BlinkOnMS
	}
	if offMS == 0 {
		offMS = BlinkOffMS
	}
	return &Blink{led: led, log: log, onMS: onMS, offMS: offMS}
}

func (b *Blink) Step(now core.Time) core.Wait {
	if !b.started {
		b.started = true
		b.next = now
	}

	b.on = !b.on
	b.led.Set(b.on)
	phase := b.offMS
	if b.on {
		b.blinks++
		b.log.Info("blink")
		phase = b.onMS
	}
	b.next = b.next.Add(phase)

	// More than a whole phase late: restart this phase from now.
	if now.Reached(b.next) {
		b.next = now.Add(phase)
	}
	return core.SleepUntil(b.next)
}

// Blinks returns how many times the LED was turned on.
func (b *Blink) Blinks() uint32 {
	return b.blinks
}
