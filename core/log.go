package core

import "sync/atomic"

// Level is a log record's severity.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "LEVEL" + Utoa(uint32(l))
}

// ParseLevel accepts the lower or upper case level names.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug, true
	case "info", "INFO":
		return LevelInfo, true
	case "warn", "WARN", "warning":
		return LevelWarn, true
	case "error", "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

// Record is one log line.
type Record struct {
	Clock Time
	Level Level
	Task  string
	Text  string
}

// LogWriter is the platform sink: USB, UART, a host buffer.
type LogWriter func(Record)

// TextWriter adapts a line-oriented writer to a LogWriter.
func TextWriter(w func(string)) LogWriter {
	return func(r Record) {
		w(FormatRecord(r))
	}
}

// FormatRecord renders r as "[   1200] INFO  blink: blink".
func FormatRecord(r Record) string {
	clock := Utoa(uint32(r.Clock))
	pad := ""
	for i := len(clock); i < 7; i++ {
		pad += " "
	}
	level := r.Level.String()
	for len(level) < 5 {
		level += " "
	}
	return "[" + pad + clock + "] " + level + " " + r.Task + ": " + r.Text
}

// Logger fans records out to a sink. Emitting never blocks a task: in async
// mode records go through a bounded channel and are dropped when it is full.
type Logger struct {
	clock   Clock
	sink    LogWriter
	level   atomic.Uint32
	ch      chan Record
	dropped atomic.Uint32
}

// NewLogger returns a synchronous logger at LevelInfo. A nil clock reads the
// system tick.
func NewLogger(clock Clock, sink LogWriter) *Logger {
	if clock == nil {
		clock = SystemClock{}
	}
	l := &Logger{clock: clock, sink: sink}
	l.level.Store(uint32(LevelInfo))
	return l
}

// SetLevel drops records below lvl.
func (l *Logger) SetLevel(lvl Level) {
	l.level.Store(uint32(lvl))
}

// StartAsync moves sink calls onto a worker goroutine fed by a channel of
// the given depth. Call it once, before any task runs.
func (l *Logger) StartAsync(depth int) {
	l.ch = make(chan Record, depth)
	go l.worker()
}

func (l *Logger) worker() {
	for r := range l.ch {
		l.sink(r)
	}
}

// Emit logs text for task at lvl.
func (l *Logger) Emit(lvl Level, task, text string) {
	if l == nil || l.sink == nil || uint32(lvl) < l.level.Load() {
		return
	}
	r := Record{Clock: l.clock.Now(), Level: lvl, Task: task, Text: text}
	if l.ch == nil {
		l.sink(r)
		return
	}
	select {
	case l.ch <- r:
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns how many records the async channel had no room for.
func (l *Logger) Dropped() uint32 {
	return l.dropped.Load()
}

// Named returns a handle that tags records with task. A nil Logger gives a
// nil handle, which discards everything.
func (l *Logger) Named(task string) *TaskLog {
	if l == nil {
		return nil
	}
	return &TaskLog{l: l, task: task}
}

// TaskLog is a Logger bound to one task name.
type TaskLog struct {
	l    *Logger
	task string
}

func (t *TaskLog) Debug(msg string) { t.emit(LevelDebug, msg) }
func (t *TaskLog) Info(msg string)  { t.emit(LevelInfo, msg) }
func (t *TaskLog) Warn(msg string)  { t.emit(LevelWarn, msg) }
func (t *TaskLog) Error(msg string) { t.emit(LevelError, msg) }

func (t *TaskLog) emit(lvl Level, msg string) {
	if t == nil {
		return
	}
	t.l.Emit(lvl, t.task, msg)
}
