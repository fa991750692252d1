// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rp2temp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func TestToCelsius(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
		want float64
	}{
		{"zero code", 0, 437.2266},
		{"reference point", 876, 27.1385},
		{"cold", 1000, -30.9106},
		{"full scale", 4095, -1479.7951},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCelsius(tt.raw, DefaultFullScale, DefaultBitDepth)
			assert.InDelta(t, tt.want, got, 0.001, "ToCelsius(%d)", tt.raw)
		})
	}
}

func TestToCelsiusDeterministic(t *testing.T) {
	for raw := uint16(0); raw < 1<<DefaultBitDepth; raw += 97 {
		a := ToCelsius(raw, DefaultFullScale, DefaultBitDepth)
		b := ToCelsius(raw, DefaultFullScale, DefaultBitDepth)
		require.Equal(t, a, b, "raw %d", raw)
	}
}

func TestToCelsiusBounds(t *testing.T) {
	hottest := ToCelsius(0, DefaultFullScale, DefaultBitDepth)
	coldest := ToCelsius(1<<DefaultBitDepth-1, DefaultFullScale, DefaultBitDepth)
	for raw := uint16(1); raw < 1<<DefaultBitDepth-1; raw++ {
		c := ToCelsius(raw, DefaultFullScale, DefaultBitDepth)
		if c >= hottest || c <= coldest {
			t.Fatalf("raw %d: %f not within (%f, %f)", raw, c, coldest, hottest)
		}
	}
}

func TestToCelsiusImplausibleSample(t *testing.T) {
	// A code far from the ~876 expected at room temperature.
	c := ToCelsius(1723, DefaultFullScale, DefaultBitDepth)
	assert.Less(t, c, -300.0)
	assert.False(t, Plausible(c), "%f should be flagged", c)
}

func TestRawFromCelsius(t *testing.T) {
	assert.Equal(t, uint16(876), RawFromCelsius(27, DefaultFullScale, DefaultBitDepth))
	assert.Equal(t, uint16(0), RawFromCelsius(500, DefaultFullScale, DefaultBitDepth))
	assert.Equal(t, uint16(4095), RawFromCelsius(-2000, DefaultFullScale, DefaultBitDepth))

	step := Resolution(DefaultFullScale, DefaultBitDepth)
	for c := -40.0; c <= 125; c += 5 {
		raw := RawFromCelsius(c, DefaultFullScale, DefaultBitDepth)
		assert.InDelta(t, c, ToCelsius(raw, DefaultFullScale, DefaultBitDepth), step/2+1e-9, "%f°C", c)
	}
}

func TestResolution(t *testing.T) {
	assert.InDelta(t, 0.4681, Resolution(DefaultFullScale, DefaultBitDepth), 0.0001)
	env := physic.Env{Pressure: 1, Humidity: 1}
	Precision(&env)
	assert.InDelta(t, 0.4681, float64(env.Temperature)/float64(physic.Kelvin), 0.0001)
	assert.Zero(t, env.Pressure)
	assert.Zero(t, env.Humidity)
}

func TestPlausible(t *testing.T) {
	for _, tt := range []struct {
		c    float64
		want bool
	}{
		{-40, true},
		{-40.1, false},
		{27, true},
		{125, true},
		{125.5, false},
	} {
		if got := Plausible(tt.c); got != tt.want {
			t.Errorf("Plausible(%f) = %t, want %t", tt.c, got, tt.want)
		}
	}
}

func TestToTemperature(t *testing.T) {
	got := ToTemperature(876, DefaultFullScale, DefaultBitDepth)
	assert.InDelta(t, 27.1385, got.Celsius(), 0.001)
	if got < MinimumTemperature || got > MaximumTemperature {
		t.Errorf("%s out of range", got)
	}
}
