package pio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyco/apps"
	"tinyco/config"
	"tinyco/core"
	"tinyco/host/sim"
	"tinyco/tasks"
)

func TestLinesClaimsOnlyItsPins(t *testing.T) {
	clock := core.NewManualClock(0)
	base := sim.NewGPIO(clock)
	l := NewLines(base, 2)

	_, err := l.ConfigureInput(2, core.PullUp)
	require.NoError(t, err)
	_, err = l.ConfigureInput(2, core.PullUp)
	assert.ErrorIs(t, err, core.ErrPinInUse)
	_, err = l.ConfigureOutput(3)
	assert.ErrorIs(t, err, core.ErrPinInUse)

	_, err = l.ConfigureOutput(25)
	require.NoError(t, err)
	_, claimed := base.Level(25)
	assert.True(t, claimed)

	_, claimed = base.Level(2)
	assert.False(t, claimed, "sampled pins never reach the wrapped driver")
	assert.Equal(t, core.PullUp, l.Pull(0))
}

func TestLinesInterruptNeedsInput(t *testing.T) {
	l := NewLines(sim.NewGPIO(core.NewManualClock(0)), 2)
	err := l.ConfigureInterrupt(3, core.EdgeBoth, core.NewEdgeLatch(nil))
	assert.ErrorIs(t, err, errNotInput)
}

func TestFeedSignalsChangedLines(t *testing.T) {
	l := NewLines(sim.NewGPIO(core.NewManualClock(0)), 2)
	a, err := l.ConfigureInput(2, core.PullUp)
	require.NoError(t, err)
	b, err := l.ConfigureInput(3, core.PullUp)
	require.NoError(t, err)

	la := core.NewEdgeLatch(nil)
	lb := core.NewEdgeLatch(nil)
	require.NoError(t, l.ConfigureInterrupt(2, core.EdgeBoth, la))
	require.NoError(t, l.ConfigureInterrupt(3, core.EdgeFalling, lb))

	// first sample only primes
	l.Feed(3)
	assert.False(t, la.Pending(core.EdgeBoth))
	assert.True(t, a.Get())
	assert.True(t, b.Get())

	l.Feed(2)
	assert.True(t, la.Pending(core.EdgeFalling))
	assert.False(t, lb.Pending(core.EdgeBoth))
	assert.False(t, a.Get())

	la.Clear()
	l.Feed(1)
	assert.True(t, la.Pending(core.EdgeRising))
	assert.True(t, lb.Pending(core.EdgeFalling))

	lb.Clear()
	l.Feed(3)
	assert.False(t, lb.Pending(core.EdgeBoth), "rising edge is masked out")
	assert.Equal(t, uint32(4), l.Samples())
}

func TestRotaryOverSampledLines(t *testing.T) {
	clock := core.NewManualClock(0)
	l := NewLines(sim.NewGPIO(clock), 2)

	var lines []string
	logger := core.NewLogger(clock, func(r core.Record) {
		if r.Task == "rotary" {
			lines = append(lines, r.Text)
		}
	})
	app, err := apps.Build(config.ForApp(config.AppRotary), apps.Env{Clock: clock, GPIO: l, Logger: logger})
	require.NoError(t, err)

	l.Prime(3)
	require.NoError(t, app.Sched.RunUntil(0))

	// one clockwise detent, then back again
	at := core.Time(0)
	for _, s := range []uint32{2, 0, 1, 3, 1, 0, 2, 3} {
		at += 2
		l.Feed(s)
		require.NoError(t, app.Sched.RunUntil(at))
	}

	assert.Equal(t, []string{"counter: 1", "counter: 0"}, lines)
	task, ok := app.Task("rotary")
	require.True(t, ok)
	assert.Equal(t, int32(0), task.(*tasks.Rotary).Counter())
}
