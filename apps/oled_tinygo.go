//go:build tinygo

package apps

import (
	"tinygo.org/x/drivers/ssd1306"

	"tinyco/config"
	"tinyco/core"
)

func init() {
	Register(config.AppOLED, buildOLED)
}

// buildOLED drives a real SSD1306 through the shared bus.
func buildOLED(b *build) error {
	ref := &core.BusRef{}
	dc := b.cfg.Display
	dev := ssd1306.NewI2C(ref)
	return spawnDisplayCounter(b, ref, dev, func() {
		dev.Configure(ssd1306.Config{Width: dc.Width, Height: dc.Height, Address: dc.Address})
		dev.ClearDisplay()
	})
}
