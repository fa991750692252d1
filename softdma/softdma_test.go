// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softdma

import (
	"errors"
	"testing"
	"time"

	"github.com/GermanBionicSystems/dietemp/adcsim"
	"github.com/GermanBionicSystems/dietemp/dma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"
)

func descriptor(count uint32) *dma.Descriptor {
	d := &dma.Descriptor{Config: dma.DefaultConfig(), Count: count}
	d.DataSize = dma.Size16
	d.ReadIncrement = false
	d.WriteIncrement = true
	d.DREQ = dma.DREQADC
	return d
}

func newSim(t *testing.T) (*Converter, *Engine) {
	t.Helper()
	opts := adcsim.DefaultOpts
	p, err := adcsim.New(&opts)
	require.NoError(t, err)
	c := NewConverter(p)
	return c, NewEngine(c)
}

func TestTransfer(t *testing.T) {
	c, e := newSim(t)
	dst := make([]uint16, 1)
	ch, err := e.Configure(descriptor(1), dst)
	require.NoError(t, err)

	for cycle := 0; cycle < 3; cycle++ {
		dst[0] = 0
		require.NoError(t, c.StartConversion())
		require.NoError(t, ch.Start())
		require.NoError(t, dma.Await(ch, 10*time.Millisecond))
		require.NoError(t, c.StopConversion())
		assert.Equal(t, uint16(876), dst[0])
	}
}

func TestTransfer_paced(t *testing.T) {
	_, e := newSim(t)
	dst := make([]uint16, 1)
	ch, err := e.Configure(descriptor(1), dst)
	require.NoError(t, err)
	require.NoError(t, ch.Start())
	// The converter never started: no data request.
	assert.True(t, ch.Busy())
	err = dma.Await(ch, time.Millisecond)
	assert.ErrorIs(t, err, dma.ErrTransferTimeout)
	assert.False(t, ch.Busy(), "Await must abort the transfer")
	assert.Equal(t, uint16(0), dst[0])
}

func TestTransfer_unpaced(t *testing.T) {
	_, e := newSim(t)
	d := descriptor(1)
	d.DREQ = dma.DREQForce
	dst := make([]uint16, 1)
	ch, err := e.Configure(d, dst)
	require.NoError(t, err)
	require.NoError(t, ch.Start())
	assert.False(t, ch.Busy())
	assert.Equal(t, uint16(876), dst[0])
}

func TestTransfer_writeIncrement(t *testing.T) {
	c, e := newSim(t)
	dst := make([]uint16, 3)
	ch, err := e.Configure(descriptor(3), dst)
	require.NoError(t, err)
	require.NoError(t, c.StartConversion())
	require.NoError(t, ch.Start())
	require.NoError(t, dma.Await(ch, 0))
	assert.Equal(t, []uint16{876, 876, 876}, dst)
}

func TestConfigure_invalid(t *testing.T) {
	_, e := newSim(t)
	_, err := e.Configure(descriptor(2), make([]uint16, 1))
	assert.ErrorIs(t, err, dma.ErrInvalidDescriptor)
}

// stubPin returns canned samples.
type stubPin struct {
	analog.PinADC
	raw int32
	err error
}

func (s *stubPin) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{Raw: 0}, analog.Sample{Raw: 4095}
}

func (s *stubPin) Read() (analog.Sample, error) {
	return analog.Sample{Raw: s.raw}, s.err
}

func (s *stubPin) String() string {
	return "stub"
}

func TestTransfer_clamped(t *testing.T) {
	for _, tc := range []struct {
		raw  int32
		want uint16
	}{
		{-3, 0},
		{5000, 4095},
		{1723, 1723},
	} {
		c := NewConverter(&stubPin{raw: tc.raw})
		dst := make([]uint16, 1)
		ch, err := NewEngine(c).Configure(descriptor(1), dst)
		require.NoError(t, err)
		require.NoError(t, c.StartConversion())
		require.NoError(t, ch.Start())
		assert.False(t, ch.Busy())
		assert.Equal(t, tc.want, dst[0], "raw %d", tc.raw)
	}
}

func TestTransfer_readError(t *testing.T) {
	cause := errors.New("adc overrun")
	c := NewConverter(&stubPin{err: cause})
	ch, err := NewEngine(c).Configure(descriptor(1), make([]uint16, 1))
	require.NoError(t, err)
	require.NoError(t, c.StartConversion())
	require.NoError(t, ch.Start())
	assert.True(t, ch.Busy())
	assert.ErrorIs(t, ch.Err(), cause)
	require.NoError(t, ch.Halt())
	assert.False(t, ch.Busy())

	// A new transfer starts clean.
	require.NoError(t, ch.Start())
	assert.NoError(t, ch.Err())
}

func TestAwait_readError(t *testing.T) {
	cause := errors.New("adc overrun")
	c := NewConverter(&stubPin{err: cause})
	ch, err := NewEngine(c).Configure(descriptor(1), make([]uint16, 1))
	require.NoError(t, err)
	require.NoError(t, c.StartConversion())
	require.NoError(t, ch.Start())
	start := time.Now()
	err = dma.Await(ch, time.Second)
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, dma.ErrTransferTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, ch.Busy(), "Await must abort the failed transfer")
}

func TestConverter(t *testing.T) {
	c, _ := newSim(t)
	assert.False(t, c.Running())
	require.NoError(t, c.StartConversion())
	assert.True(t, c.Running())
	require.NoError(t, c.Halt())
	assert.False(t, c.Running())
	assert.Equal(t, "softdma.Converter{adcsim.Pin{ADC4}}", c.String())
}
