// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dmatest is meant to be used to test drivers over a fake converter
// and DMA engine.
package dmatest

import (
	"sync"

	"github.com/GermanBionicSystems/dietemp/adc"
	"github.com/GermanBionicSystems/dietemp/dma"
	"periph.io/x/conn/v3/conntest"
)

// Ops recorded by Playback.
const (
	OpStartConversion = "start_conversion"
	OpStopConversion  = "stop_conversion"
	OpConfigure       = "configure"
	OpArm             = "arm"
	OpComplete        = "complete"
	OpAbort           = "abort"
	OpFault           = "fault"
	OpHalt            = "halt"
)

// Playback is a converter and a single DMA channel wired together.
//
// A started transfer completes the first time Busy is polled while the
// converter runs, delivering the next entry of Samples. Transfers listed in
// Stall never see their data request and stay busy until aborted. Transfers
// listed in Faults halt on their first poll without writing, and Err returns
// the listed error until the next Start.
//
// Every call is appended to Ops.
type Playback struct {
	sync.Mutex
	Samples []uint16
	// Count is the number of Samples delivered so far.
	Count int
	// Stall holds the 0-based indexes of Start calls that never complete.
	Stall  map[int]bool
	Faults map[int]error
	Ops    []string

	desc    dma.Descriptor
	dst     []uint16
	running bool
	armed   bool
	starts  int
	err     error
}

// String implements conn.Resource.
func (p *Playback) String() string {
	return "playback"
}

// Halt implements conn.Resource.
func (p *Playback) Halt() error {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, OpHalt)
	p.armed = false
	p.running = false
	return nil
}

// StartConversion implements adc.Reader.
func (p *Playback) StartConversion() error {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, OpStartConversion)
	p.running = true
	return nil
}

// StopConversion implements adc.Reader.
func (p *Playback) StopConversion() error {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, OpStopConversion)
	p.running = false
	return nil
}

// Configure implements dma.Engine. The returned channel is p itself.
func (p *Playback) Configure(d *dma.Descriptor, dst []uint16) (dma.Channel, error) {
	if err := d.Validate(dst); err != nil {
		return nil, err
	}
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, OpConfigure)
	p.desc = *d
	p.dst = dst
	return p, nil
}

// Start implements dma.Channel.
func (p *Playback) Start() error {
	p.Lock()
	defer p.Unlock()
	if p.dst == nil {
		return conntest.Errorf("dmatest: Start() before Configure()")
	}
	p.Ops = append(p.Ops, OpArm)
	p.armed = true
	p.starts++
	p.err = nil
	return nil
}

// Busy implements dma.Channel.
func (p *Playback) Busy() bool {
	p.Lock()
	defer p.Unlock()
	if !p.armed {
		return false
	}
	if err := p.Faults[p.starts-1]; err != nil {
		p.err = err
		p.armed = false
		p.Ops = append(p.Ops, OpFault)
		return false
	}
	if !p.running || p.Stall[p.starts-1] || len(p.Samples)-p.Count < int(p.desc.Count) {
		return true
	}
	for i := uint32(0); i < p.desc.Count; i++ {
		j := 0
		if p.desc.WriteIncrement {
			j = int(i)
		}
		p.dst[j] = p.Samples[p.Count]
		p.Count++
	}
	p.armed = false
	p.Ops = append(p.Ops, OpComplete)
	return false
}

// Abort implements dma.Channel.
func (p *Playback) Abort() error {
	p.Lock()
	defer p.Unlock()
	p.Ops = append(p.Ops, OpAbort)
	p.armed = false
	return nil
}

// Err implements dma.Channel.
func (p *Playback) Err() error {
	p.Lock()
	defer p.Unlock()
	return p.err
}

// Close verifies that all the Samples have been delivered.
func (p *Playback) Close() error {
	p.Lock()
	defer p.Unlock()
	if len(p.Samples) != p.Count {
		return conntest.Errorf("dmatest: expected all samples to be delivered: count %d; expected %d", p.Count, len(p.Samples))
	}
	return nil
}

var _ adc.Reader = &Playback{}
var _ dma.Engine = &Playback{}
var _ dma.Channel = &Playback{}
