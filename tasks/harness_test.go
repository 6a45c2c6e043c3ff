package tasks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"tinyco/core"
)

var errNack = errors.New("nack")

// pin is a settable line. Changing its level signals the attached latch the
// way the edge interrupt would.
type pin struct {
	level bool
	latch *core.EdgeLatch
}

func (p *pin) Get() bool { return p.level }

func (p *pin) Set(level bool) {
	if level == p.level {
		return
	}
	p.level = level
	if p.latch != nil {
		p.latch.Signal(level)
	}
}

type transition struct {
	At    core.Time
	Level bool
}

// led records every Set with the time it happened.
type led struct {
	clock core.Clock
	log   []transition
}

func (l *led) Set(high bool) {
	l.log = append(l.log, transition{At: l.clock.Now(), Level: high})
}

type harness struct {
	t     *testing.T
	clock *core.ManualClock
	sched *core.Scheduler
	log   *core.Logger
	recs  []core.Record
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, clock: core.NewManualClock(0)}
	h.log = core.NewLogger(h.clock, func(r core.Record) { h.recs = append(h.recs, r) })
	h.sched = core.NewScheduler(h.clock, core.WithLogger(h.log))
	return h
}

func (h *harness) spawn(name string, task core.Task) core.TaskID {
	id, err := h.sched.Spawn(name, task)
	require.NoError(h.t, err)
	return id
}

// at runs everything due up to ms, applies f, then lets tasks react.
func (h *harness) at(ms core.Time, f func()) {
	require.NoError(h.t, h.sched.RunUntil(ms))
	if f != nil {
		f()
		require.NoError(h.t, h.sched.RunUntil(ms))
	}
}

// lines returns the text logged by task.
func (h *harness) lines(task string) []string {
	var out []string
	for _, r := range h.recs {
		if r.Task == task {
			out = append(out, r.Text)
		}
	}
	return out
}

func (h *harness) records(task string, lvl core.Level) []core.Record {
	var out []core.Record
	for _, r := range h.recs {
		if r.Task == task && r.Level == lvl {
			out = append(out, r)
		}
	}
	return out
}

// ackBus acknowledges a fixed address set and records every probe.
type ackBus struct {
	ack    map[uint16]bool
	probes []uint16
}

func (b *ackBus) Tx(addr uint16, w, r []byte) error {
	b.probes = append(b.probes, addr)
	if b.ack[addr] {
		return nil
	}
	return errNack
}
