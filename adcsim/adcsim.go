// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package adcsim simulates the RP2040 on-die temperature sensor as a periph
// analog.PinADC.
//
// Codes follow the sensor transfer function of package rp2temp, optionally
// with uniform noise of a few LSB.
package adcsim

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/GermanBionicSystems/dietemp/rp2temp"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// Opts configures the simulated sensor.
type Opts struct {
	// Celsius is the initial die temperature.
	Celsius float64
	// FullScale and BitDepth describe the converter.
	FullScale float64
	BitDepth  int
	// Noise is the maximum deviation, in LSB, added to every code.
	Noise int
	// Seed makes the noise reproducible.
	Seed uint64
}

// DefaultOpts is a die at 27 °C on a Pico, without noise.
var DefaultOpts = Opts{
	Celsius:   27,
	FullScale: rp2temp.DefaultFullScale,
	BitDepth:  rp2temp.DefaultBitDepth,
}

// ErrHalted is returned by Read after Halt.
var ErrHalted = errors.New("adcsim: pin halted")

// Pin is a simulated temperature sensor input.
type Pin struct {
	mu      sync.Mutex
	opts    Opts
	rng     *rand.Rand
	celsius float64
	halted  bool
}

// New returns a simulated sensor.
func New(opts *Opts) (*Pin, error) {
	if opts.BitDepth < 1 || opts.BitDepth > 16 {
		return nil, fmt.Errorf("adcsim: invalid bit depth %d", opts.BitDepth)
	}
	if opts.FullScale <= 0 {
		return nil, fmt.Errorf("adcsim: invalid full scale %g", opts.FullScale)
	}
	if opts.Noise < 0 {
		return nil, fmt.Errorf("adcsim: invalid noise %d", opts.Noise)
	}
	return &Pin{
		opts:    *opts,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		celsius: opts.Celsius,
	}, nil
}

// SetTemperature changes the simulated die temperature.
func (p *Pin) SetTemperature(c float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.celsius = c
}

// Temperature returns the simulated die temperature.
func (p *Pin) Temperature() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.celsius
}

// String implements conn.Resource.
func (p *Pin) String() string {
	return "adcsim.Pin{ADC4}"
}

// Halt implements conn.Resource. Subsequent reads fail.
func (p *Pin) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halted = true
	return nil
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return "ADC4"
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return rp2temp.Channel
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return "ADC"
}

// Range implements analog.PinADC.
func (p *Pin) Range() (analog.Sample, analog.Sample) {
	top := int32(1)<<uint(p.opts.BitDepth) - 1
	return analog.Sample{}, p.sample(top)
}

// Read implements analog.PinADC.
func (p *Pin) Read() (analog.Sample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.halted {
		return analog.Sample{}, ErrHalted
	}
	raw := int32(rp2temp.RawFromCelsius(p.celsius, p.opts.FullScale, p.opts.BitDepth))
	if n := p.opts.Noise; n > 0 {
		raw += int32(p.rng.IntN(2*n+1) - n)
	}
	top := int32(1)<<uint(p.opts.BitDepth) - 1
	if raw < 0 {
		raw = 0
	}
	if raw > top {
		raw = top
	}
	return p.sample(raw), nil
}

func (p *Pin) sample(raw int32) analog.Sample {
	codes := float64(uint32(1) << uint(p.opts.BitDepth))
	v := float64(raw) * p.opts.FullScale / codes
	return analog.Sample{V: physic.ElectricPotential(v * float64(physic.Volt)), Raw: raw}
}

var _ analog.PinADC = &Pin{}
