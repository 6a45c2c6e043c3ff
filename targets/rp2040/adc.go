//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"errors"
	"machine"

	"tinyco/core"
)

// Channel 4 is the internal temperature sensor.
const adcTempChannel = 4

// RpAdcDriver implements core.ADCDriver using TinyGo's machine.ADC.
type RpAdcDriver struct {
	channels map[core.ADCChannelID]machine.ADC
}

// NewRPAdcDriver powers up the ADC block.
func NewRPAdcDriver() *RpAdcDriver {
	machine.InitADC()
	return &RpAdcDriver{channels: make(map[core.ADCChannelID]machine.ADC)}
}

// rawInternalTemp returns the 12-bit raw ADC value from the internal temp sensor (0–4095).
func rawInternalTemp() uint16 {
	rp.ADC.CS.SetBits(rp.ADC_CS_TS_EN)
	rp.ADC.CS.ReplaceBits(
		uint32(adcTempChannel)<<rp.ADC_CS_AINSEL_Pos,
		rp.ADC_CS_AINSEL_Msk,
		0,
	)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
	for !rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
	}
	return uint16(rp.ADC.RESULT.Get())
}

// ConfigureChannel sets up the pin mux for an external channel 0-3.
func (d *RpAdcDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if ch == adcTempChannel {
		return nil
	}
	if _, ok := d.channels[ch]; ok {
		return nil
	}

	var adc machine.ADC
	switch ch {
	case 0:
		adc = machine.ADC{Pin: machine.ADC0}
	case 1:
		adc = machine.ADC{Pin: machine.ADC1}
	case 2:
		adc = machine.ADC{Pin: machine.ADC2}
	case 3:
		adc = machine.ADC{Pin: machine.ADC3}
	default:
		return errors.New("unsupported ADC channel")
	}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}
	d.channels[ch] = adc
	return nil
}

// ReadRaw returns a raw 12-bit ADC value (0-4095) from a channel.
func (d *RpAdcDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	if ch == adcTempChannel {
		return core.ADCValue(rawInternalTemp()), nil
	}
	adc, ok := d.channels[ch]
	if !ok {
		return 0, errors.New("ADC channel not configured")
	}
	// machine.ADC scales to 16 bits.
	return core.ADCValue(adc.Get() >> 4), nil
}
