// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rp2temp

import (
	"math"

	"periph.io/x/conn/v3/physic"
)

const (
	// Channel is the ADC input the temperature sensor is wired to.
	Channel = 4

	// DefaultFullScale is the ADC reference voltage on a Pico board.
	DefaultFullScale = 3.3
	// DefaultBitDepth is the RP2040 ADC resolution.
	DefaultBitDepth = 12

	// Transfer function of the sensor.
	_REFERENCE_CELSIUS = 27.0
	_REFERENCE_VOLTS   = 0.706
	_SLOPE_VOLTS       = 0.001721

	// MinimumTemperature is the lowest die temperature the RP2040 is
	// specified to operate at.
	MinimumTemperature physic.Temperature = physic.ZeroCelsius - 40*physic.Kelvin
	// MaximumTemperature is the highest die temperature the RP2040 is
	// specified to operate at.
	MaximumTemperature physic.Temperature = physic.ZeroCelsius + 125*physic.Kelvin
)

// ToCelsius converts a raw ADC sample to degrees Celsius.
//
// fullScale is the ADC reference voltage and bitDepth its resolution. The
// result is not rounded nor range checked; see Plausible.
func ToCelsius(raw uint16, fullScale float64, bitDepth int) float64 {
	volts := float64(raw) * fullScale / float64(uint32(1)<<uint(bitDepth))
	return _REFERENCE_CELSIUS - (volts-_REFERENCE_VOLTS)/_SLOPE_VOLTS
}

// ToTemperature is ToCelsius expressed as a physic.Temperature.
func ToTemperature(raw uint16, fullScale float64, bitDepth int) physic.Temperature {
	c := ToCelsius(raw, fullScale, bitDepth)
	return physic.ZeroCelsius + physic.Temperature(math.Round(c*float64(physic.Kelvin)))
}

// RawFromCelsius returns the sample the ADC would produce at temperature c.
//
// It is the inverse of ToCelsius, rounded to the nearest code and clamped to
// the converter range.
func RawFromCelsius(c, fullScale float64, bitDepth int) uint16 {
	volts := _REFERENCE_VOLTS - (c-_REFERENCE_CELSIUS)*_SLOPE_VOLTS
	codes := float64(uint32(1) << uint(bitDepth))
	raw := math.Round(volts * codes / fullScale)
	if raw < 0 {
		return 0
	}
	if top := codes - 1; raw > top {
		return uint16(top)
	}
	return uint16(raw)
}

// Resolution returns the temperature step, in °C, of one ADC code.
func Resolution(fullScale float64, bitDepth int) float64 {
	return fullScale / float64(uint32(1)<<uint(bitDepth)) / _SLOPE_VOLTS
}

// Plausible reports whether c lies within the die operating range.
//
// Readings outside of it come from a corrupted sample or a misconfigured
// converter.
func Plausible(c float64) bool {
	return c >= MinimumTemperature.Celsius() && c <= MaximumTemperature.Celsius()
}

// Precision sets env.Temperature to the temperature step of one ADC code at
// the default reference and resolution.
func Precision(env *physic.Env) {
	env.Temperature = physic.Temperature(Resolution(DefaultFullScale, DefaultBitDepth) * float64(physic.Kelvin))
	env.Pressure = 0
	env.Humidity = 0
}
