// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package adc defines the converter side of a DMA-paced acquisition.
//
// A Reader owns one converter channel. While running it produces samples
// into its FIFO and raises the data request line the DMA engine is paced
// by, so StartConversion must happen before the transfer is armed and
// StopConversion only after the transfer completed.
package adc

import "periph.io/x/conn/v3"

// Reader is a free-running converter on a single selected input.
type Reader interface {
	conn.Resource
	// StartConversion discards stale samples and starts free-running
	// conversion on the selected input.
	StartConversion() error
	// StopConversion halts conversion. Samples already in the FIFO are kept.
	StopConversion() error
}

// Opts selects the converter input and resolution.
type Opts struct {
	// Channel is the input index. 4 is the RP2040 temperature sensor.
	Channel int
	// Bits is the converter resolution.
	Bits int
	// ClockDiv paces free-running conversions. 0 converts back to back.
	ClockDiv uint32
}

// DefaultOpts selects the RP2040 temperature sensor at full speed.
var DefaultOpts = Opts{
	Channel: 4,
	Bits:    12,
}

// Max returns the largest code the converter produces.
func (o *Opts) Max() uint16 {
	return uint16(1<<uint(o.Bits) - 1)
}
