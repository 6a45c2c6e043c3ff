// Package monitor reads framed log records from a board and forwards them to
// the console and, optionally, an MQTT broker.
package monitor

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"tinyco/core"
	"tinyco/protocol"
)

// Sink receives every decoded record.
type Sink interface {
	Forward(r core.Record) error
	Close() error
}

// Monitor pumps records from a port into its sinks.
type Monitor struct {
	reader     *protocol.Reader
	sinks      []Sink
	minLevel   core.Level
	statsEvery time.Duration

	forwarded uint32
	failed    uint32
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithMinLevel drops records below lvl.
func WithMinLevel(lvl core.Level) Option {
	return func(m *Monitor) { m.minLevel = lvl }
}

// WithStatsInterval sets how often link statistics are logged. Zero
// disables them.
func WithStatsInterval(d time.Duration) Option {
	return func(m *Monitor) { m.statsEvery = d }
}

// New starts reading port. Records are queued up to depth; the oldest are
// dropped when the sinks fall behind.
func New(port io.ReadCloser, depth int, sinks []Sink, opts ...Option) *Monitor {
	m := &Monitor{
		reader:     protocol.NewReader(port, depth),
		sinks:      sinks,
		statsEvery: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run forwards records until the port reaches EOF or ctx is done. It closes
// the port and every sink before returning.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.closeSinks()

	var tick <-chan time.Time
	if m.statsEvery > 0 {
		ticker := time.NewTicker(m.statsEvery)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			m.reader.Close()
			return ctx.Err()
		case rec, ok := <-m.reader.Records():
			if !ok {
				m.logStats()
				return m.reader.Err()
			}
			m.dispatch(rec)
		case <-tick:
			m.logStats()
		}
	}
}

func (m *Monitor) dispatch(rec protocol.Record) {
	r := core.Record{
		Clock: core.Time(rec.Clock),
		Level: core.Level(rec.Level),
		Task:  rec.Task,
		Text:  rec.Text,
	}
	if r.Level < m.minLevel {
		return
	}
	for _, s := range m.sinks {
		if err := s.Forward(r); err != nil {
			m.failed++
			glog.Warningf("forward %s record: %v", r.Task, err)
		}
	}
	m.forwarded++
	if glog.V(2) {
		glog.Infof("RCV %s %s", r.Task, r.Level)
	}
}

func (m *Monitor) logStats() {
	st := m.reader.Stats()
	glog.Infof("link: %d frames, %d lost, %d corrupt, %d unknown; %d forwarded, %d sink errors",
		st.Frames.Load(), st.Lost.Load(), st.Corrupt.Load(), st.Unknown.Load(), m.forwarded, m.failed)
}

func (m *Monitor) closeSinks() {
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			glog.Warningf("close sink: %v", err)
		}
	}
}

// Stats returns the link counters.
func (m *Monitor) Stats() *protocol.Stats {
	return m.reader.Stats()
}

// Forwarded returns how many records passed the level filter.
func (m *Monitor) Forwarded() uint32 {
	return m.forwarded
}
