// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package softdma emulates a converter and a DMA channel on top of any periph
// analog.PinADC.
//
// It mirrors the hardware contract: a transfer paced by the converter
// (dma.DREQADC) only makes progress while the Converter runs. Samples are
// read from the pin when the channel is polled, so the pipeline stays
// single threaded.
package softdma

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/dietemp/adc"
	"github.com/GermanBionicSystems/dietemp/dma"
	"periph.io/x/conn/v3/analog"
)

// Converter runs conversions on an analog pin.
type Converter struct {
	mu      sync.Mutex
	p       analog.PinADC
	running bool
	min     int32
	max     int32
}

// NewConverter returns a stopped Converter reading from p.
func NewConverter(p analog.PinADC) *Converter {
	lo, hi := p.Range()
	return &Converter{p: p, min: lo.Raw, max: hi.Raw}
}

func (c *Converter) String() string {
	return fmt.Sprintf("softdma.Converter{%s}", c.p)
}

// Halt stops conversion and halts the pin.
func (c *Converter) Halt() error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	return c.p.Halt()
}

// StartConversion implements adc.Reader.
func (c *Converter) StartConversion() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	return nil
}

// StopConversion implements adc.Reader.
func (c *Converter) StopConversion() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// Running reports whether the converter is producing samples.
func (c *Converter) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// read converts once. The code is clamped to the pin range.
func (c *Converter) read() (uint16, error) {
	s, err := c.p.Read()
	if err != nil {
		return 0, err
	}
	raw := s.Raw
	if raw < c.min {
		raw = c.min
	}
	if raw > c.max {
		raw = c.max
	}
	if raw < 0 {
		raw = 0
	}
	return uint16(raw), nil
}

// Engine hands out channels fed by a Converter.
type Engine struct {
	c *Converter
}

// NewEngine returns an Engine whose transfers read from c.
func NewEngine(c *Converter) *Engine {
	return &Engine{c: c}
}

// Configure implements dma.Engine.
func (e *Engine) Configure(d *dma.Descriptor, dst []uint16) (dma.Channel, error) {
	if err := d.Validate(dst); err != nil {
		return nil, err
	}
	return &Channel{c: e.c, desc: *d, dst: dst}, nil
}

// Channel is a software DMA channel.
type Channel struct {
	mu      sync.Mutex
	c       *Converter
	desc    dma.Descriptor
	dst     []uint16
	armed   bool
	written uint32
	err     error
}

func (ch *Channel) String() string {
	return fmt.Sprintf("softdma.Channel{%s}", &ch.desc)
}

// Halt implements conn.Resource.
func (ch *Channel) Halt() error {
	return ch.Abort()
}

// Start implements dma.Channel.
func (ch *Channel) Start() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.armed = true
	ch.written = 0
	ch.err = nil
	return nil
}

// Busy implements dma.Channel.
//
// It moves as many words as the converter can provide right now. A pin read
// error leaves the transfer pending and is reported by Err.
func (ch *Channel) Busy() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.armed {
		return false
	}
	paced := ch.desc.DREQ != dma.DREQForce
	for ch.written < ch.desc.Count {
		if paced && !ch.c.Running() {
			return true
		}
		v, err := ch.c.read()
		if err != nil {
			ch.err = err
			return true
		}
		i := uint32(0)
		if ch.desc.WriteIncrement {
			i = ch.written
		}
		ch.dst[i] = v
		ch.written++
	}
	ch.armed = false
	return false
}

// Abort implements dma.Channel.
func (ch *Channel) Abort() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.armed = false
	return nil
}

// Err implements dma.Channel. It returns the pin read error that stalled the
// current transfer.
func (ch *Channel) Err() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.err
}

var _ adc.Reader = &Converter{}
var _ dma.Engine = &Engine{}
var _ dma.Channel = &Channel{}
