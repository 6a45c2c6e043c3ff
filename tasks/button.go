package tasks

import (
	"tinyco/core"
)

type buttonPhase uint8

const (
	buttonArm buttonPhase = iota
	buttonWait
	buttonSettle
)

// Button reports presses and releases of a mechanical switch. An edge only
// starts the settle delay; what gets reported is decided by the level
// sampled afterwards, so a bounce that reverses inside the window reports
// nothing.
type Button struct {
	pin       core.InputPin
	latch     *core.EdgeLatch
	activeLow bool
	settle    uint32
	log       *core.TaskLog

	phase   buttonPhase
	deb     Debouncer
	presses uint32
}

// NewButton returns a button task. activeLow means pressed pulls the line
// low, the usual wiring with a pull-up.
func NewButton(pin core.InputPin, latch *core.EdgeLatch, activeLow bool, log *core.TaskLog) *Button {
	return &Button{pin: pin, latch: latch, activeLow: activeLow, settle: DebounceMS, log: log}
}

func (b *Button) pressed() bool {
	return b.pin.Get() != b.activeLow
}

func (b *Button) Step(now core.Time) core.Wait {
	switch b.phase {
	case buttonArm:
		b.latch.Clear()
		b.deb = NewDebouncer(DebounceMS, b.pressed())
		b.phase = buttonWait

	case buttonWait:
		if b.latch.Take(core.EdgeBoth) != core.EdgeNone {
			b.phase = buttonSettle
			return core.SleepFor(now, b.settle)
		}

	case buttonSettle:
		b.latch.Clear()
		pressed := b.pressed()
		if pressed != b.deb.Level() && !b.deb.Quiet(now) {
			return core.SleepUntil(b.deb.QuietAt())
		}
		if b.deb.Update(now, pressed) {
			if pressed {
				b.presses++
				b.log.Info("Button Press")
			} else {
				b.log.Info("Button Release")
			}
		}
		b.phase = buttonWait
	}
	return core.OnEdge(core.EdgeBoth, b.latch)
}

// Pressed returns the debounced state.
func (b *Button) Pressed() bool {
	return b.deb.Level()
}

// Presses returns how many presses were reported.
func (b *Button) Presses() uint32 {
	return b.presses
}
