// Package serial opens the link the firmware writes its telemetry frames to.
package serial

import (
	"io"
)

// Port is a byte stream to the board. The monitor only reads from it; the
// native implementation uses github.com/tarm/serial.
type Port interface {
	io.ReadWriteCloser

	// Flush drops anything buffered but not yet read.
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. USB CDC ignores it; a UART log sink needs it to match.
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultBaud matches the firmware's UART log sink.
const DefaultBaud = 115200

// DefaultConfig returns the settings for a board's log port.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
