package core

// WaitKind tags the suspension condition a task returns from Step.
type WaitKind uint8

const (
	WaitReady WaitKind = iota // run again on the next pass
	WaitSleep                 // run once Until is reached
	WaitEvent                 // run once any latch holds an edge matching Edge
	WaitBus                   // run once Guard has no holder
	WaitDone                  // never run again
)

func (k WaitKind) String() string {
	switch k {
	case WaitReady:
		return "ready"
	case WaitSleep:
		return "sleeping"
	case WaitEvent:
		return "waiting-event"
	case WaitBus:
		return "waiting-bus"
	case WaitDone:
		return "done"
	}
	return "unknown"
}

// MaxWaitLatches bounds how many lines one event wait can watch.
const MaxWaitLatches = 4

// Wait is the value a task hands back to the scheduler. It is small and
// copied by value so suspending never allocates.
type Wait struct {
	Kind  WaitKind
	Until Time
	Edge  Edge
	Guard *BusGuard

	latches [MaxWaitLatches]*EdgeLatch
	nlatch  uint8
}

// Yield lets other ready tasks run before this one runs again.
func Yield() Wait {
	return Wait{Kind: WaitReady}
}

// SleepUntil suspends until the clock reaches t.
func SleepUntil(t Time) Wait {
	return Wait{Kind: WaitSleep, Until: t}
}

// SleepFor suspends for ms milliseconds from now.
func SleepFor(now Time, ms uint32) Wait {
	return Wait{Kind: WaitSleep, Until: now.Add(ms)}
}

// OnEdge suspends until any of latches holds an edge matching kind. Latches
// beyond MaxWaitLatches are ignored.
func OnEdge(kind Edge, latches ...*EdgeLatch) Wait {
	w := Wait{Kind: WaitEvent, Edge: kind}
	for _, l := range latches {
		if int(w.nlatch) == MaxWaitLatches {
			break
		}
		w.latches[w.nlatch] = l
		w.nlatch++
	}
	return w
}

// OnBus suspends until g is free. The task must still acquire the guard when
// it runs; another task may have taken it first.
func OnBus(g *BusGuard) Wait {
	return Wait{Kind: WaitBus, Guard: g}
}

// Done retires the task.
func Done() Wait {
	return Wait{Kind: WaitDone}
}

// Latches returns the lines an event wait watches.
func (w *Wait) Latches() []*EdgeLatch {
	return w.latches[:w.nlatch]
}

// Satisfied reports whether the condition holds at now. The latch is read,
// never consumed; consuming is the task's job.
func (w *Wait) Satisfied(now Time) bool {
	switch w.Kind {
	case WaitReady:
		return true
	case WaitSleep:
		return now.Reached(w.Until)
	case WaitEvent:
		for _, l := range w.latches[:w.nlatch] {
			if l.Pending(w.Edge) {
				return true
			}
		}
		return false
	case WaitBus:
		return !w.Guard.Busy()
	}
	return false
}
