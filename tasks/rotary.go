package tasks

import (
	"tinyco/core"
)

// Rotary counts encoder detents. It sleeps until either line has an edge,
// then samples both lines and feeds the decoder.
type Rotary struct {
	a, b   core.InputPin
	la, lb *core.EdgeLatch
	log    *core.TaskLog

	started bool
	quad    Quadrature
	counter int32
}

// NewRotary returns an encoder task over two input lines and the latches
// their interrupts signal.
func NewRotary(a, b core.InputPin, la, lb *core.EdgeLatch, log *core.TaskLog) *Rotary {
	return &Rotary{a: a, b: b, la: la, lb: lb, log: log}
}

func (r *Rotary) Step(now core.Time) core.Wait {
	if !r.started {
		r.started = true
		r.la.Clear()
		r.lb.Clear()
		r.quad = NewQuadrature(r.a.Get(), r.b.Get())
		return r.wait()
	}

	// Clear before sampling so an edge after the sample wakes us again.
	r.la.Clear()
	r.lb.Clear()
	switch r.quad.Update(r.a.Get(), r.b.Get()) {
	case DirClockwise:
		r.counter++
		r.log.Info("counter: " + core.Itoa(int(r.counter)))
	case DirCounterClockwise:
		r.counter--
		r.log.Info("counter: " + core.Itoa(int(r.counter)))
	}
	return r.wait()
}

func (r *Rotary) wait() core.Wait {
	return core.OnEdge(core.EdgeBoth, r.la, r.lb)
}

// Counter returns the signed detent count.
func (r *Rotary) Counter() int32 {
	return r.counter
}

// Invalid returns the decoder's ignored transition count.
func (r *Rotary) Invalid() uint32 {
	return r.quad.Invalid()
}
