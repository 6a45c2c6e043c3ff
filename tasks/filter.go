package tasks

import (
	"tinyco/core"
)

// DebounceMS is the default quiet interval for mechanical contacts.
const DebounceMS = 20

// Debouncer holds the last accepted level of a contact. A change is accepted
// only once the quiet interval has passed since the previous accepted change.
type Debouncer struct {
	quiet  uint32
	level  bool
	last   core.Time
	primed bool
}

// NewDebouncer starts from level. The first change is accepted at any time.
func NewDebouncer(quietMS uint32, level bool) Debouncer {
	return Debouncer{quiet: quietMS, level: level}
}

// Quiet reports whether a change would be accepted at now.
func (d *Debouncer) Quiet(now core.Time) bool {
	return !d.primed || now.Reached(d.QuietAt())
}

// QuietAt is the earliest time the next change is accepted.
func (d *Debouncer) QuietAt() core.Time {
	return d.last.Add(d.quiet)
}

// Update offers a sampled level and reports whether it was accepted as a
// change.
func (d *Debouncer) Update(now core.Time, level bool) bool {
	if level == d.level || !d.Quiet(now) {
		return false
	}
	d.level = level
	d.last = now
	d.primed = true
	return true
}

// Level returns the accepted level.
func (d *Debouncer) Level() bool {
	return d.level
}

// JoystickThreshold is the default report threshold in ADC counts.
const JoystickThreshold = 20

// Hysteresis suppresses reports until a sample moves more than threshold
// away from the last reported one.
type Hysteresis struct {
	last      core.ADCValue
	threshold core.ADCValue
}

func NewHysteresis(initial, threshold core.ADCValue) Hysteresis {
	return Hysteresis{last: initial, threshold: threshold}
}

// Update returns true and records v when it is far enough from the last
// reported value.
func (h *Hysteresis) Update(v core.ADCValue) bool {
	diff := v - h.last
	if v < h.last {
		diff = h.last - v
	}
	if diff <= h.threshold {
		return false
	}
	h.last = v
	return true
}

// Last returns the last reported value.
func (h *Hysteresis) Last() core.ADCValue {
	return h.last
}
