package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var got []Record
	l := NewLogger(NewManualClock(42), func(r Record) { got = append(got, r) })
	log := l.Named("blink")

	log.Debug("hidden")
	log.Info("blink")
	l.SetLevel(LevelWarn)
	log.Info("hidden")
	log.Warn("careful")

	require.Len(t, got, 2)
	assert.Equal(t, Record{Clock: 42, Level: LevelInfo, Task: "blink", Text: "blink"}, got[0])
	assert.Equal(t, LevelWarn, got[1].Level)
}

func TestLoggerAsyncDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	l := NewLogger(NewManualClock(0), func(Record) { <-release })
	l.StartAsync(2)

	for i := 0; i < 10; i++ {
		l.Emit(LevelInfo, "spam", Itoa(i))
	}
	// At most one record is in the sink and two are buffered.
	assert.GreaterOrEqual(t, l.Dropped(), uint32(7))
	close(release)
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	log := l.Named("x")
	assert.Nil(t, log)
	log.Info("nothing")
	l.Emit(LevelError, "x", "nothing")
}

func TestFormatRecord(t *testing.T) {
	got := FormatRecord(Record{Clock: 1200, Level: LevelInfo, Task: "blink", Text: "blink"})
	assert.Equal(t, "[   1200] INFO  blink: blink", got)

	var line string
	TextWriter(func(s string) { line = s })(Record{Clock: 7, Level: LevelError, Task: "scan", Text: "boom"})
	assert.Equal(t, "[      7] ERROR scan: boom", line)
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, LevelWarn, lvl)
	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}

func TestErrorTaxonomy(t *testing.T) {
	nack := errors.New("nack")
	err := Transient(nack)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, nack)
	assert.False(t, IsTransient(nack))
	assert.Nil(t, Transient(nil))

	ie := &InitError{Task: "bmp180", Err: nack}
	assert.Equal(t, "init bmp180: nack", ie.Error())
}
