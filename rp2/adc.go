// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build rp2040

package rp2

import (
	"fmt"
	"machine"
	"runtime/volatile"
	"unsafe"

	"github.com/GermanBionicSystems/dietemp/adc"
)

const (
	_ADC_BASE = 0x4004c000

	_CS_TS_EN        = 1 << 1
	_CS_START_MANY   = 1 << 3
	_CS_AINSEL_POS   = 12
	_CS_AINSEL_MASK  = 0x7
	_FCS_EN          = 1 << 0
	_FCS_DREQ_EN     = 1 << 3
	_FCS_EMPTY       = 1 << 8
	_FCS_OVER        = 1 << 11
	_FCS_UNDER       = 1 << 10
	_FCS_THRESH_POS  = 24
	_DIV_INT_POS     = 8
	_DIV_INT_MASK    = 0xffff
	_TEMPERATURE_CH  = 4
	_MAX_ADC_CHANNEL = 4
)

type adcRegs struct {
	cs     volatile.Register32
	result volatile.Register32
	fcs    volatile.Register32
	fifo   volatile.Register32
	div    volatile.Register32
}

var adcHW = (*adcRegs)(unsafe.Pointer(uintptr(_ADC_BASE)))

// ADC is the RP2040 converter in free-running mode feeding its FIFO.
type ADC struct {
	opts adc.Opts
}

// NewADC powers the converter, selects opts.Channel and routes the FIFO to
// the DMA request line with a threshold of one sample.
//
// Channel 4 also enables the temperature sensor bias.
func NewADC(opts *adc.Opts) (*ADC, error) {
	if opts.Channel < 0 || opts.Channel > _MAX_ADC_CHANNEL {
		return nil, fmt.Errorf("rp2: invalid ADC channel %d", opts.Channel)
	}
	if opts.Bits != 12 {
		return nil, fmt.Errorf("rp2: the ADC has 12 bits, not %d", opts.Bits)
	}
	if opts.ClockDiv > _DIV_INT_MASK {
		return nil, fmt.Errorf("rp2: invalid ADC clock divider %d", opts.ClockDiv)
	}
	machine.InitADC()
	if opts.Channel == _TEMPERATURE_CH {
		adcHW.cs.SetBits(_CS_TS_EN)
	}
	adcHW.cs.ReplaceBits(uint32(opts.Channel), _CS_AINSEL_MASK, _CS_AINSEL_POS)
	adcHW.div.Set(opts.ClockDiv << _DIV_INT_POS)
	// Clear sticky overflow flags, no shift, no error bit in samples.
	adcHW.fcs.Set(_FCS_OVER | _FCS_UNDER)
	adcHW.fcs.Set(_FCS_EN | _FCS_DREQ_EN | 1<<_FCS_THRESH_POS)
	return &ADC{opts: *opts}, nil
}

func (a *ADC) String() string {
	return fmt.Sprintf("rp2.ADC{ch%d}", a.opts.Channel)
}

// Halt stops conversion, disables the FIFO and the sensor bias.
func (a *ADC) Halt() error {
	adcHW.cs.ClearBits(_CS_START_MANY)
	adcHW.fcs.Set(0)
	a.drain()
	adcHW.cs.ClearBits(_CS_TS_EN)
	return nil
}

// StartConversion implements adc.Reader.
func (a *ADC) StartConversion() error {
	a.drain()
	adcHW.cs.SetBits(_CS_START_MANY)
	return nil
}

// StopConversion implements adc.Reader.
func (a *ADC) StopConversion() error {
	adcHW.cs.ClearBits(_CS_START_MANY)
	return nil
}

// FIFO returns the address of the FIFO register, the DMA read address.
func (a *ADC) FIFO() uintptr {
	return uintptr(unsafe.Pointer(&adcHW.fifo))
}

// drain discards samples left over from a previous cycle.
func (a *ADC) drain() {
	for adcHW.fcs.Get()&_FCS_EMPTY == 0 {
		adcHW.fifo.Get()
	}
}

var _ adc.Reader = &ADC{}
