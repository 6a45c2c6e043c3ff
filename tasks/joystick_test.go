package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyco/core"
)

type fakeADC struct {
	vals       map[core.ADCChannelID]core.ADCValue
	err        error
	configured []core.ADCChannelID
	reads      []core.ADCChannelID
}

func (a *fakeADC) ConfigureChannel(ch core.ADCChannelID) error {
	a.configured = append(a.configured, ch)
	return nil
}

func (a *fakeADC) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	a.reads = append(a.reads, ch)
	if a.err != nil {
		return 0, a.err
	}
	return a.vals[ch], nil
}

const (
	axisX core.ADCChannelID = 0
	axisY core.ADCChannelID = 1
)

func TestJoystickReportsOnlyOnChange(t *testing.T) {
	h := newHarness(t)
	adc := &fakeADC{vals: map[core.ADCChannelID]core.ADCValue{axisX: 2048, axisY: 2048}}
	sw := &pin{level: true}
	j := NewJoystick(adc, JoystickConfig{X: axisX, Y: axisY, Button: sw, ActiveLow: true}, h.log.Named("joystick"))
	h.spawn("joystick", j)

	h.at(0, nil)
	assert.Equal(t, []core.ADCChannelID{axisX, axisY}, adc.configured)
	assert.Equal(t, []core.ADCChannelID{axisX, axisY}, adc.reads)

	// Values set after the step at ms are seen by the step 10 ms later.
	h.at(30, func() { adc.vals[axisX] = 2060 })
	h.at(40, func() { adc.vals[axisX] = 2080 })
	h.at(50, func() { sw.Set(false) })
	h.at(70, func() { sw.Set(true) })
	h.at(80, func() { sw.Set(false) })
	h.at(90, func() { adc.err = errNack })
	h.at(100, nil)

	assert.Equal(t, []string{
		"X: 2048 Y: 2048",
		"X: 2080 Y: 2048",
		"Button Pressed",
		"X: 2080 Y: 2048",
		"Button Pressed",
		"X: 2080 Y: 2048",
	}, h.lines("joystick"))
	assert.Equal(t, uint32(1), j.Errors())
	assert.Equal(t, uint32(4), j.Reports())

	next, ok := h.sched.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, core.Time(110), next)
}

func TestJoystickWithoutButton(t *testing.T) {
	h := newHarness(t)
	adc := &fakeADC{vals: map[core.ADCChannelID]core.ADCValue{axisX: 100, axisY: 4000}}
	h.spawn("joystick", NewJoystick(adc, JoystickConfig{X: axisX, Y: axisY}, h.log.Named("joystick")))

	h.at(0, func() { adc.vals[axisY] = 3900 })
	h.at(20, nil)
	assert.Equal(t, []string{"X: 100 Y: 4000", "X: 100 Y: 3900"}, h.lines("joystick"))
}
