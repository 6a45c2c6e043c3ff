// Package pio samples a quadrature encoder with an RP2040 PIO state machine
// instead of GPIO interrupts. The state machine watches two adjacent pins and
// pushes their levels whenever either changes; Lines turns those samples
// into the edge latch signals the encoder task waits on.
package pio

import (
	"errors"
	"sync/atomic"

	"tinyco/core"
)

var errNotInput = errors.New("pio: interrupt on a line that is not an input")

// primed marks that state holds a real sample.
const primed = 1 << 2

type line struct {
	claimed bool
	pull    core.Pull
	edge    core.Edge
	latch   *core.EdgeLatch
}

// Lines is a GPIODriver that owns two adjacent pins, first and first+1, and
// passes every other pin to the wrapped driver. Claims and interrupt setup
// happen before sampling starts; Feed may then run on another goroutine.
type Lines struct {
	core.GPIODriver

	first core.GPIOPin
	lines [2]line

	// bit 0 is first, bit 1 is first+1
	state   atomic.Uint32
	samples atomic.Uint32
}

// NewLines wraps gpio, taking over first and first+1.
func NewLines(gpio core.GPIODriver, first core.GPIOPin) *Lines {
	return &Lines{GPIODriver: gpio, first: first}
}

func (l *Lines) index(pin core.GPIOPin) (int, bool) {
	switch pin {
	case l.first:
		return 0, true
	case l.first + 1:
		return 1, true
	}
	return 0, false
}

// First returns the lower of the two sampled pins.
func (l *Lines) First() core.GPIOPin {
	return l.first
}

// Pull returns the bias requested for line i, 0 or 1.
func (l *Lines) Pull(i int) core.Pull {
	return l.lines[i].pull
}

func (l *Lines) ConfigureOutput(pin core.GPIOPin) (core.OutputPin, error) {
	if _, ok := l.index(pin); ok {
		return nil, core.ErrPinInUse
	}
	return l.GPIODriver.ConfigureOutput(pin)
}

func (l *Lines) ConfigureInput(pin core.GPIOPin, pull core.Pull) (core.InputPin, error) {
	i, ok := l.index(pin)
	if !ok {
		return l.GPIODriver.ConfigureInput(pin, pull)
	}
	if l.lines[i].claimed {
		return nil, core.ErrPinInUse
	}
	l.lines[i].claimed = true
	l.lines[i].pull = pull
	return &sampledPin{l: l, bit: 1 << i}, nil
}

func (l *Lines) ConfigureInterrupt(pin core.GPIOPin, edge core.Edge, latch *core.EdgeLatch) error {
	i, ok := l.index(pin)
	if !ok {
		return l.GPIODriver.ConfigureInterrupt(pin, edge, latch)
	}
	if !l.lines[i].claimed {
		return errNotInput
	}
	l.lines[i].edge = edge
	l.lines[i].latch = latch
	return nil
}

// Prime sets the starting levels without signalling anything.
func (l *Lines) Prime(sample uint32) {
	l.state.Store(sample&3 | primed)
}

// Feed applies one sample, bit 0 for first and bit 1 for first+1, and
// signals the latch of each line that changed in a configured direction.
// The first sample after construction only primes the state.
func (l *Lines) Feed(sample uint32) {
	l.samples.Add(1)
	next := sample&3 | primed
	old := l.state.Swap(next)
	if old&primed == 0 {
		return
	}
	changed := (old ^ next) & 3
	for i := range l.lines {
		bit := uint32(1) << i
		if changed&bit == 0 {
			continue
		}
		level := next&bit != 0
		edge := core.EdgeFalling
		if level {
			edge = core.EdgeRising
		}
		if ln := &l.lines[i]; ln.latch != nil && ln.edge&edge != 0 {
			ln.latch.Signal(level)
		}
	}
}

// Samples returns how many samples Feed has seen.
func (l *Lines) Samples() uint32 {
	return l.samples.Load()
}

type sampledPin struct {
	l   *Lines
	bit uint32
}

func (p *sampledPin) Get() bool {
	return p.l.state.Load()&p.bit != 0
}
