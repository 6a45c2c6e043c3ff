package core

import "sync/atomic"

// Edge selects level transitions on an input line.
type Edge uint8

const (
	EdgeNone    Edge = 0
	EdgeRising  Edge = 1 << 0
	EdgeFalling Edge = 1 << 1
	EdgeBoth         = EdgeRising | EdgeFalling
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	}
	return "none"
}

// fallingFirst is set while both edges are pending and the falling one was
// latched first.
const fallingFirst = 1 << 2

// EdgeLatch is a single-slot latch for one input line. The interrupt handler
// calls Signal; the one task that owns the line consumes with Take or Clear.
// An edge that arrives while the same kind is still pending is coalesced and
// counted in Dropped.
//
// Consumers must clear the latch before sampling the line. An edge that lands
// after the sample then stays pending and wakes the task again.
type EdgeLatch struct {
	state   atomic.Uint32
	dropped atomic.Uint32
	notify  func()
}

// NewEdgeLatch returns an empty latch. notify, if not nil, runs after every
// Signal and is how an idle scheduler learns about the edge.
func NewEdgeLatch(notify func()) *EdgeLatch {
	return &EdgeLatch{notify: notify}
}

// Signal records an edge. level is the line level after the transition.
// Safe to call from interrupt context.
func (l *EdgeLatch) Signal(level bool) {
	e := uint32(EdgeFalling)
	if level {
		e = uint32(EdgeRising)
	}
	for {
		old := l.state.Load()
		if old&e != 0 {
			l.dropped.Add(1)
			break
		}
		next := old | e
		if old&uint32(EdgeBoth) != 0 && e == uint32(EdgeRising) {
			next |= fallingFirst
		}
		if l.state.CompareAndSwap(old, next) {
			break
		}
	}
	if l.notify != nil {
		l.notify()
	}
}

// Pending reports whether an edge matching kind is latched.
func (l *EdgeLatch) Pending(kind Edge) bool {
	return l.state.Load()&uint32(kind) != 0
}

// Take consumes exactly one pending edge matching kind and returns it, or
// EdgeNone if nothing matched. With both edges pending and kind EdgeBoth the
// older one is taken.
func (l *EdgeLatch) Take(kind Edge) Edge {
	for {
		old := l.state.Load()
		match := Edge(old) & kind & EdgeBoth
		if match == EdgeNone {
			return EdgeNone
		}
		take := match
		if match == EdgeBoth {
			take = EdgeRising
			if old&fallingFirst != 0 {
				take = EdgeFalling
			}
		}
		next := (old &^ uint32(take)) &^ fallingFirst
		if l.state.CompareAndSwap(old, next) {
			return take
		}
	}
}

// Clear discards every pending edge.
func (l *EdgeLatch) Clear() {
	l.state.Store(0)
}

// Dropped returns how many edges were coalesced into an already pending one.
func (l *EdgeLatch) Dropped() uint32 {
	return l.dropped.Load()
}
