// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"periph.io/x/conn/v3"
)

// Size is the width of one transfer.
type Size uint8

// Transfer widths.
const (
	Size8  Size = 0
	Size16 Size = 1
	Size32 Size = 2
)

func (s Size) String() string {
	switch s {
	case Size8:
		return "8bit"
	case Size16:
		return "16bit"
	case Size32:
		return "32bit"
	default:
		return fmt.Sprintf("Size(%d)", uint8(s))
	}
}

// DREQ selects the data request line pacing a transfer.
type DREQ uint8

const (
	// DREQADC is raised by the RP2040 ADC when its FIFO reaches the
	// threshold.
	DREQADC DREQ = 36
	// DREQForce runs the transfer unpaced.
	DREQForce DREQ = 0x3f
)

// DefaultTimeout bounds Await when no timeout is given.
const DefaultTimeout = 100 * time.Millisecond

// ErrTransferTimeout is returned by Await when a transfer did not complete
// in time.
var ErrTransferTimeout = errors.New("dma: transfer timeout")

// ErrInvalidDescriptor is returned when a Descriptor cannot be bound to its
// destination.
var ErrInvalidDescriptor = errors.New("dma: invalid descriptor")

// Config is the channel control configuration.
type Config struct {
	DataSize       Size
	ReadIncrement  bool
	WriteIncrement bool
	DREQ           DREQ
}

// DefaultConfig returns the power on configuration of a channel: 32 bits,
// incrementing reads, fixed writes, unpaced.
func DefaultConfig() Config {
	return Config{
		DataSize:      Size32,
		ReadIncrement: true,
		DREQ:          DREQForce,
	}
}

// Descriptor is a one-shot transfer from a peripheral register into memory.
type Descriptor struct {
	Config
	// Count is the number of DataSize words moved per transfer.
	Count uint32
}

// Validate checks that d can write into dst, a slice of 16 bit cells.
func (d *Descriptor) Validate(dst []uint16) error {
	if d.Count == 0 {
		return fmt.Errorf("%w: zero count", ErrInvalidDescriptor)
	}
	if d.DataSize != Size16 {
		return fmt.Errorf("%w: data size %s does not match 16bit destination", ErrInvalidDescriptor, d.DataSize)
	}
	n := uint32(1)
	if d.WriteIncrement {
		n = d.Count
	}
	if uint32(len(dst)) < n {
		return fmt.Errorf("%w: %d transfers need %d cells, destination has %d", ErrInvalidDescriptor, d.Count, n, len(dst))
	}
	return nil
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("dma.Descriptor{%s, rinc=%t, winc=%t, dreq=%d, count=%d}", d.DataSize, d.ReadIncrement, d.WriteIncrement, d.DREQ, d.Count)
}

// Engine claims channels and binds descriptors to them.
type Engine interface {
	// Configure validates d, claims a channel and programs it to write into
	// dst. The channel is not started.
	Configure(d *Descriptor, dst []uint16) (Channel, error)
}

// Channel is a configured DMA channel.
//
// Halt aborts any transfer and releases the channel.
type Channel interface {
	conn.Resource
	// Start arms the channel and triggers a transfer into the configured
	// destination. The destination address is reset on every Start.
	Start() error
	// Busy reports whether the last started transfer is still running.
	Busy() bool
	// Abort cancels a running transfer.
	Abort() error
	// Err returns the error that stopped the last started transfer, if any.
	// A channel that failed may report either busy or idle.
	Err() error
}

// pollInterval is how long Await yields between two reads of the busy flag.
var pollInterval = 20 * time.Microsecond

// Await blocks until ch completes its transfer or timeout elapses.
//
// On timeout the transfer is aborted and the returned error wraps
// ErrTransferTimeout. When the channel reports an error the transfer is
// aborted and that error is returned wrapped, without waiting for the
// deadline. A non-positive timeout means DefaultTimeout.
func Await(ch Channel, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	for ch.Busy() {
		if err := ch.Err(); err != nil {
			return failed(ch, err)
		}
		if !time.Now().Before(deadline) {
			if err := ch.Abort(); err != nil {
				return fmt.Errorf("%w: %s after %s; abort failed: %v", ErrTransferTimeout, ch, timeout, err)
			}
			return fmt.Errorf("%w: %s after %s", ErrTransferTimeout, ch, timeout)
		}
		if pollInterval > 0 {
			time.Sleep(pollInterval)
		} else {
			runtime.Gosched()
		}
	}
	if err := ch.Err(); err != nil {
		return failed(ch, err)
	}
	return nil
}

func failed(ch Channel, err error) error {
	if err2 := ch.Abort(); err2 != nil {
		return fmt.Errorf("dma: %s: %w; abort failed: %v", ch, err, err2)
	}
	return fmt.Errorf("dma: %s: %w", ch, err)
}
