package tasks

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyco/core"
)

// fakeDisplay flushes through a BusRef like a real I2C display would.
type fakeDisplay struct {
	ref     *core.BusRef
	lit     map[[2]int16]bool
	flushes int
}

func (d *fakeDisplay) Size() (int16, int16) { return 16, 8 }

func (d *fakeDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.lit[[2]int16{x, y}] = c.R > 0
}

func (d *fakeDisplay) Display() error {
	if err := d.ref.Tx(0x3C, []byte{0x40}, nil); err != nil {
		return err
	}
	d.flushes++
	return nil
}

func TestCounterLogs(t *testing.T) {
	h := newHarness(t)
	c := NewCounter(h.log.Named("counter"))
	h.spawn("counter", c)

	require.NoError(t, h.sched.RunUntil(1000))
	assert.Equal(t, []string{
		"I am counting... 0",
		"I am counting... 1",
		"I am counting... 2",
	}, h.lines("counter"))

	// The count is a byte and wraps.
	require.NoError(t, h.sched.RunUntil(500*256))
	assert.Equal(t, uint8(1), c.Count())
	lines := h.lines("counter")
	assert.Equal(t, "I am counting... 0", lines[256])
}

func TestCounterDrawsUnderGuard(t *testing.T) {
	h := newHarness(t)
	bus := &ackBus{ack: map[uint16]bool{0x3C: true}}
	guard := core.NewBusGuard(bus, h.sched.Notify)
	ref := &core.BusRef{}
	disp := &fakeDisplay{ref: ref, lit: map[[2]int16]bool{}}
	setup := func() error { return ref.Tx(0x3C, []byte{0x00, 0xAE}, nil) }
	c := NewCounter(h.log.Named("counter")).WithDisplay(guard, ref, disp, setup)
	h.spawn("counter", c)

	require.NoError(t, h.sched.RunUntil(1000))
	assert.Equal(t, 3, disp.flushes)
	assert.Len(t, bus.probes, 4)
	assert.True(t, disp.lit[[2]int16{2, 0}])
	assert.False(t, disp.lit[[2]int16{3, 0}])

	// Busy bus: the tick is logged on time and the redraw follows the release.
	other, _ := guard.TryAcquire("other")
	require.NoError(t, h.sched.RunUntil(1500))
	assert.Equal(t, uint8(4), c.Count())
	assert.Equal(t, 3, disp.flushes)
	other.Release()
	require.NoError(t, h.sched.RunUntil(1500))
	assert.Equal(t, 4, disp.flushes)

	// Outside a lease the display cannot reach the bus.
	assert.ErrorIs(t, disp.Display(), core.ErrBusNotHeld)
}
