//go:build !tinygo

package apps

import (
	"image/color"

	"tinygo.org/x/drivers"

	"tinyco/config"
	"tinyco/core"
)

func init() {
	Register(config.AppOLED, buildOLED)
}

// buildOLED runs the counter against a framebuffer that is flushed to the
// display address, so host builds exercise the same bus traffic pattern
// without the ssd1306 driver and its machine dependency.
func buildOLED(b *build) error {
	ref := &core.BusRef{}
	dc := b.cfg.Display
	fb := newFrameDisplay(ref, dc.Address, dc.Width, dc.Height)
	return spawnDisplayCounter(b, ref, fb, fb.Clear)
}

// frameDisplay is a monochrome drivers.Displayer in SSD1306 page layout:
// one byte per column per 8-row page, bit 0 on top.
type frameDisplay struct {
	bus           drivers.I2C
	addr          uint16
	width, height int16

	// tx is the data-mode control byte followed by the framebuffer.
	tx  []byte
	buf []byte
}

func newFrameDisplay(bus drivers.I2C, addr uint16, width, height int16) *frameDisplay {
	pages := (int(height) + 7) / 8
	tx := make([]byte, 1+int(width)*pages)
	tx[0] = 0x40
	return &frameDisplay{bus: bus, addr: addr, width: width, height: height, tx: tx, buf: tx[1:]}
}

func (d *frameDisplay) Size() (x, y int16) {
	return d.width, d.height
}

func (d *frameDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	i := int(x) + int(y/8)*int(d.width)
	bit := byte(1) << uint(y%8)
	if c.R|c.G|c.B != 0 {
		d.buf[i] |= bit
	} else {
		d.buf[i] &^= bit
	}
}

// Pixel reports whether the pixel at x, y is lit.
func (d *frameDisplay) Pixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.buf[int(x)+int(y/8)*int(d.width)]&(1<<uint(y%8)) != 0
}

// Display writes the whole framebuffer in one transaction.
func (d *frameDisplay) Display() error {
	return d.bus.Tx(d.addr, d.tx, nil)
}

// Clear blanks the framebuffer and the panel.
func (d *frameDisplay) Clear() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	_ = d.Display()
}
