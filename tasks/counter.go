package tasks

import (
	"image/color"

	"tinygo.org/x/drivers"

	"tinyco/core"
)

// CounterPeriodMS is how often the counter ticks.
const CounterPeriodMS = 500

var (
	pixelOn  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pixelOff = color.RGBA{}
)

// Counter logs an 8-bit count every 500 ms. With a display attached it also
// draws the count as a bar along the top rows; the display talks through ref,
// which the counter attaches to its lease only for the redraw.
type Counter struct {
	log     *core.TaskLog
	guard   *core.BusGuard
	display drivers.Displayer
	ref     *core.BusRef
	setup   func() error

	count   uint8
	next    core.Time
	started bool
	drawn   int16
}

// NewCounter returns a log-only counter.
func NewCounter(log *core.TaskLog) *Counter {
	return &Counter{log: log}
}

// WithDisplay attaches a display bound to ref on the guarded bus. setup, if
// not nil, runs once from Init while the counter holds the guard.
func (c *Counter) WithDisplay(guard *core.BusGuard, ref *core.BusRef, d drivers.Displayer, setup func() error) *Counter {
	c.guard = guard
	c.ref = ref
	c.display = d
	c.setup = setup
	return c
}

func (c *Counter) Init() error {
	if c.display == nil || c.setup == nil {
		return nil
	}
	lease, ok := c.guard.TryAcquire("counter")
	if !ok {
		return core.ErrBusy
	}
	c.ref.Attach(lease)
	defer func() {
		c.ref.Detach()
		lease.Release()
	}()
	return c.setup()
}

func (c *Counter) Step(now core.Time) core.Wait {
	if !c.started {
		c.started = true
		c.next = now
	}
	if now.Reached(c.next) {
		c.log.Info("I am counting... " + core.Itoa(int(c.count)))
		c.count++
		c.next = c.next.Add(CounterPeriodMS)
	}

	if c.display != nil && c.drawn != c.barWidth() {
		lease, ok := c.guard.TryAcquire("counter")
		if !ok {
			return core.OnBus(c.guard)
		}
		c.draw(lease)
		lease.Release()
	}
	return core.SleepUntil(c.next)
}

func (c *Counter) barWidth() int16 {
	w, _ := c.display.Size()
	if w <= 0 {
		return 0
	}
	return int16(int(c.count) % int(w))
}

func (c *Counter) draw(lease core.Lease) {
	c.ref.Attach(lease)
	defer c.ref.Detach()

	bar := c.barWidth()
	w, _ := c.display.Size()
	for x := int16(0); x < w; x++ {
		px := pixelOff
		if x < bar {
			px = pixelOn
		}
		for y := int16(0); y < 4; y++ {
			c.display.SetPixel(x, y, px)
		}
	}
	if err := c.display.Display(); err != nil {
		c.log.Warn("display: " + err.Error())
		return
	}
	c.drawn = bar
}

// Count returns the next value to be logged.
func (c *Counter) Count() uint8 {
	return c.count
}
