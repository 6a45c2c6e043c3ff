package sim

import (
	"fmt"
	"sync"

	"tinyco/core"
)

// ADCMax is the largest 12-bit sample.
const ADCMax = 4095

// ADC implements core.ADCDriver with settable channel values.
type ADC struct {
	mu         sync.Mutex
	values     map[core.ADCChannelID]core.ADCValue
	configured map[core.ADCChannelID]bool
	fail       map[core.ADCChannelID]int
	reads      uint32
}

func NewADC() *ADC {
	return &ADC{
		values:     make(map[core.ADCChannelID]core.ADCValue),
		configured: make(map[core.ADCChannelID]bool),
		fail:       make(map[core.ADCChannelID]int),
	}
}

// Set changes what ch reads from now on. Values saturate at ADCMax.
func (a *ADC) Set(ch core.ADCChannelID, v core.ADCValue) {
	if v > ADCMax {
		v = ADCMax
	}
	a.mu.Lock()
	a.values[ch] = v
	a.mu.Unlock()
}

// Fail makes the next n reads of ch return an error.
func (a *ADC) Fail(ch core.ADCChannelID, n int) {
	a.mu.Lock()
	a.fail[ch] += n
	a.mu.Unlock()
}

// Reads returns how many conversions were requested.
func (a *ADC) Reads() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

func (a *ADC) ConfigureChannel(ch core.ADCChannelID) error {
	if ch > 3 {
		return fmt.Errorf("adc channel %d out of range", ch)
	}
	a.mu.Lock()
	a.configured[ch] = true
	a.mu.Unlock()
	return nil
}

func (a *ADC) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	if !a.configured[ch] {
		return 0, fmt.Errorf("adc channel %d not configured", ch)
	}
	if a.fail[ch] > 0 {
		a.fail[ch]--
		return 0, core.Transient(fmt.Errorf("adc channel %d timeout", ch))
	}
	return a.values[ch], nil
}
