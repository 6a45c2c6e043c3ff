//go:build rp2040 || rp2350

package main

import (
	"io"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"tinyco/config"
	"tinyco/core"
	"tinyco/protocol"
)

// After this many failed writes in a row a port counts as disconnected and
// records for it are dropped until a write succeeds again.
const maxWriteFailures = 10

// port is one destination of the telemetry stream.
type port struct {
	w        io.Writer
	failures uint32
	dropped  uint32
}

func (p *port) write(frame []byte) {
	if p.failures > maxWriteFailures {
		// Probe with a lone sync byte so the host resynchronises on the
		// next frame when it comes back.
		if n, err := p.w.Write([]byte{protocol.SyncByte}); err != nil || n == 0 {
			p.dropped++
			return
		}
		p.failures = 0
	}
	written := 0
	for written < len(frame) {
		n, err := p.w.Write(frame[written:])
		if err != nil || n == 0 {
			p.failures++
			p.dropped++
			return
		}
		written += n
	}
	p.failures = 0
}

// telemetrySink frames log records and writes them to USB CDC and, when
// enabled, a hardware UART. It runs on the logger's worker goroutine only.
type telemetrySink struct {
	framer *protocol.Framer
	ports  []*port
}

func newTelemetrySink(cfg config.UART) *telemetrySink {
	s := &telemetrySink{framer: protocol.NewFramer()}

	// machine.Serial is USB CDC on the Pico boards.
	if err := machine.Serial.Configure(machine.UARTConfig{}); err == nil {
		s.ports = append(s.ports, &port{w: machine.Serial})
	}

	if cfg.Enabled {
		u := uartx.UART0
		err := u.Configure(uartx.UARTConfig{
			BaudRate: cfg.Baud,
			TX:       machine.Pin(cfg.TX),
			RX:       machine.Pin(cfg.RX),
		})
		if err == nil {
			s.ports = append(s.ports, &port{w: u})
		}
	}

	for _, p := range s.ports {
		p.write([]byte{protocol.SyncByte})
	}
	return s
}

func (s *telemetrySink) write(r core.Record) {
	frame := s.framer.EncodeRecord(protocol.Record{
		Clock: uint32(r.Clock),
		Level: uint8(r.Level),
		Task:  r.Task,
		Text:  r.Text,
	})
	for _, p := range s.ports {
		p.write(frame)
	}
}
