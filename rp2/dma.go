// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build rp2040

package rp2

import (
	"errors"
	"fmt"
	"runtime/volatile"
	"sync"
	"unsafe"

	"github.com/GermanBionicSystems/dietemp/dma"
)

const (
	_DMA_BASE       = 0x50000000
	_DMA_CHAN_ABORT = _DMA_BASE + 0x444
	_DMA_CHANNELS   = 12

	_CTRL_EN             = 1 << 0
	_CTRL_DATA_SIZE_POS  = 2
	_CTRL_INCR_READ      = 1 << 4
	_CTRL_INCR_WRITE     = 1 << 5
	_CTRL_CHAIN_TO_POS   = 11
	_CTRL_TREQ_SEL_POS   = 15
	_CTRL_BUSY           = 1 << 24
	_CTRL_WRITE_ERROR    = 1 << 29
	_CTRL_READ_ERROR     = 1 << 30
	_CTRL_AHB_ERROR      = 1 << 31
	_CTRL_ERROR_CLEAR    = _CTRL_WRITE_ERROR | _CTRL_READ_ERROR
	_ABORT_SPIN_ATTEMPTS = 10000
)

// dmaChannelRegs is the register block of one channel and its aliases.
type dmaChannelRegs struct {
	readAddr          volatile.Register32
	writeAddr         volatile.Register32
	transCount        volatile.Register32
	ctrlTrig          volatile.Register32
	al1Ctrl           volatile.Register32
	al1ReadAddr       volatile.Register32
	al1WriteAddr      volatile.Register32
	al1TransCountTrig volatile.Register32
	al2Ctrl           volatile.Register32
	al2TransCount     volatile.Register32
	al2ReadAddr       volatile.Register32
	al2WriteAddrTrig  volatile.Register32
	al3Ctrl           volatile.Register32
	al3WriteAddr      volatile.Register32
	al3TransCount     volatile.Register32
	al3ReadAddrTrig   volatile.Register32
}

var (
	dmaHW     = (*[_DMA_CHANNELS]dmaChannelRegs)(unsafe.Pointer(uintptr(_DMA_BASE)))
	chanAbort = (*volatile.Register32)(unsafe.Pointer(uintptr(_DMA_CHAN_ABORT)))
)

// ErrNoChannel is returned by Configure when every channel is claimed.
var ErrNoChannel = errors.New("rp2: no free DMA channel")

// errBus is reported by Channel.Err after an AHB bus error.
var errBus = errors.New("rp2: DMA bus error")

var (
	claimMu sync.Mutex
	claimed uint16
)

// DMA is a dma.Engine whose transfers read a fixed peripheral register.
type DMA struct {
	src uintptr
}

// NewDMA returns an engine reading from the register at src, for example
// (*ADC).FIFO().
func NewDMA(src uintptr) *DMA {
	return &DMA{src: src}
}

// Configure implements dma.Engine.
//
// The channel is chained to itself, so it never triggers another one.
func (e *DMA) Configure(d *dma.Descriptor, dst []uint16) (dma.Channel, error) {
	if err := d.Validate(dst); err != nil {
		return nil, err
	}
	n, err := claim()
	if err != nil {
		return nil, err
	}
	ctrl := uint32(_CTRL_EN) |
		uint32(d.DataSize)<<_CTRL_DATA_SIZE_POS |
		uint32(n)<<_CTRL_CHAIN_TO_POS |
		uint32(d.DREQ)<<_CTRL_TREQ_SEL_POS
	if d.ReadIncrement {
		ctrl |= _CTRL_INCR_READ
	}
	if d.WriteIncrement {
		ctrl |= _CTRL_INCR_WRITE
	}
	ch := &Channel{n: n, regs: &dmaHW[n], src: e.src, dst: dst, count: d.Count}
	ch.regs.readAddr.Set(uint32(e.src))
	ch.regs.writeAddr.Set(ch.dstAddr())
	ch.regs.transCount.Set(d.Count)
	// al1Ctrl does not trigger.
	ch.regs.al1Ctrl.Set(ctrl | _CTRL_ERROR_CLEAR)
	return ch, nil
}

// Channel is a claimed RP2040 DMA channel.
type Channel struct {
	n     int
	regs  *dmaChannelRegs
	src   uintptr
	dst   []uint16
	count uint32
}

func (c *Channel) String() string {
	return fmt.Sprintf("rp2.DMA{ch%d}", c.n)
}

// Halt aborts any transfer, disables the channel and releases it.
func (c *Channel) Halt() error {
	err := c.Abort()
	c.regs.al1Ctrl.ClearBits(_CTRL_EN)
	release(c.n)
	return err
}

// Start implements dma.Channel.
//
// Error flags of the previous transfer are cleared, then the write address and
// count are reloaded before the read address trigger alias starts the
// transfer.
func (c *Channel) Start() error {
	// READ_ERROR and WRITE_ERROR are write one to clear.
	c.regs.al1Ctrl.SetBits(_CTRL_ERROR_CLEAR)
	c.regs.writeAddr.Set(c.dstAddr())
	c.regs.transCount.Set(c.count)
	c.regs.al3ReadAddrTrig.Set(uint32(c.src))
	return nil
}

// Busy implements dma.Channel.
func (c *Channel) Busy() bool {
	return c.regs.ctrlTrig.Get()&_CTRL_BUSY != 0
}

// Abort implements dma.Channel.
func (c *Channel) Abort() error {
	mask := uint32(1) << uint(c.n)
	chanAbort.Set(mask)
	for i := 0; chanAbort.Get()&mask != 0; i++ {
		if i == _ABORT_SPIN_ATTEMPTS {
			return fmt.Errorf("rp2: DMA channel %d did not abort", c.n)
		}
	}
	return nil
}

// Err implements dma.Channel.
//
// A bus error halts the channel with BUSY clear.
func (c *Channel) Err() error {
	ctrl := c.regs.ctrlTrig.Get()
	switch {
	case ctrl&_CTRL_READ_ERROR != 0:
		return fmt.Errorf("%w: read from %#08x", errBus, c.src)
	case ctrl&_CTRL_WRITE_ERROR != 0:
		return fmt.Errorf("%w: write to %#08x", errBus, c.dstAddr())
	case ctrl&_CTRL_AHB_ERROR != 0:
		return errBus
	}
	return nil
}

func (c *Channel) dstAddr() uint32 {
	return uint32(uintptr(unsafe.Pointer(&c.dst[0])))
}

func claim() (int, error) {
	claimMu.Lock()
	defer claimMu.Unlock()
	for n := 0; n < _DMA_CHANNELS; n++ {
		if claimed&(1<<uint(n)) == 0 {
			claimed |= 1 << uint(n)
			return n, nil
		}
	}
	return 0, ErrNoChannel
}

func release(n int) {
	claimMu.Lock()
	defer claimMu.Unlock()
	claimed &^= 1 << uint(n)
}

var _ dma.Engine = &DMA{}
var _ dma.Channel = &Channel{}
