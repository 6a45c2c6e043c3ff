// Package sim runs the example applications on the host against simulated
// peripherals. Time is virtual: the scheduler's clock only moves when the
// runner advances it, so a scenario replays identically every time.
package sim

import (
	"fmt"
	"sync"

	"tinyco/core"
)

// Mode is how a simulated pin was claimed.
type Mode uint8

const (
	ModeUnclaimed Mode = iota
	ModeOutput
	ModeInput
)

// Transition is one level change on an output pin.
type Transition struct {
	At    core.Time
	Level bool
}

type simPin struct {
	mode    Mode
	level   bool
	edge    core.Edge
	latch   *core.EdgeLatch
	history []Transition
}

// GPIO implements core.GPIODriver. Outputs record their transitions; inputs
// are driven from outside with Drive, which fires the pin's interrupt.
type GPIO struct {
	mu    sync.Mutex
	clock core.Clock
	pins  map[core.GPIOPin]*simPin
}

func NewGPIO(clock core.Clock) *GPIO {
	return &GPIO{clock: clock, pins: make(map[core.GPIOPin]*simPin)}
}

func (g *GPIO) claim(pin core.GPIOPin, mode Mode) (*simPin, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pins[pin]; ok && p.mode != ModeUnclaimed {
		return nil, fmt.Errorf("gpio %d: %w", pin, core.ErrPinInUse)
	}
	p := &simPin{mode: mode}
	g.pins[pin] = p
	return p, nil
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) (core.OutputPin, error) {
	p, err := g.claim(pin, ModeOutput)
	if err != nil {
		return nil, err
	}
	return &outputPin{g: g, p: p}, nil
}

// ConfigureInput claims pin. A pull-up input idles high, anything else low.
func (g *GPIO) ConfigureInput(pin core.GPIOPin, pull core.Pull) (core.InputPin, error) {
	p, err := g.claim(pin, ModeInput)
	if err != nil {
		return nil, err
	}
	p.level = pull == core.PullUp
	return &inputPin{g: g, p: p}, nil
}

func (g *GPIO) ConfigureInterrupt(pin core.GPIOPin, edge core.Edge, latch *core.EdgeLatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pins[pin]
	if !ok || p.mode != ModeInput {
		return fmt.Errorf("gpio %d: interrupt on a pin that is not an input", pin)
	}
	p.edge = edge
	p.latch = latch
	return nil
}

// Drive sets the level of an input pin. A change matching the configured
// edge signals the pin's latch, as the interrupt handler would.
func (g *GPIO) Drive(pin core.GPIOPin, level bool) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	if !ok || p.mode != ModeInput {
		g.mu.Unlock()
		return fmt.Errorf("gpio %d: not an input", pin)
	}
	if p.level == level {
		g.mu.Unlock()
		return nil
	}
	p.level = level
	edge := core.EdgeFalling
	if level {
		edge = core.EdgeRising
	}
	latch := p.latch
	fire := latch != nil && p.edge&edge != 0
	g.mu.Unlock()

	if fire {
		latch.Signal(level)
	}
	return nil
}

// Level returns the current level of a claimed pin.
func (g *GPIO) Level(pin core.GPIOPin) (bool, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pins[pin]
	if !ok {
		return false, false
	}
	return p.level, true
}

// Transitions returns the level changes written to an output pin.
func (g *GPIO) Transitions(pin core.GPIOPin) []Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pins[pin]
	if !ok {
		return nil
	}
	return append([]Transition(nil), p.history...)
}

type outputPin struct {
	g *GPIO
	p *simPin
}

func (o *outputPin) Set(high bool) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	if o.p.level == high && len(o.p.history) > 0 {
		return
	}
	o.p.level = high
	o.p.history = append(o.p.history, Transition{At: o.g.clock.Now(), Level: high})
}

type inputPin struct {
	g *GPIO
	p *simPin
}

func (i *inputPin) Get() bool {
	i.g.mu.Lock()
	defer i.g.mu.Unlock()
	return i.p.level
}
