// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma_test

import (
	"errors"
	"testing"
	"time"

	"github.com/GermanBionicSystems/dietemp/dma"
	"github.com/GermanBionicSystems/dietemp/dma/dmatest"
	"github.com/google/go-cmp/cmp"
)

func adcDescriptor() *dma.Descriptor {
	d := &dma.Descriptor{Config: dma.DefaultConfig(), Count: 1}
	d.DataSize = dma.Size16
	d.ReadIncrement = false
	d.WriteIncrement = true
	d.DREQ = dma.DREQADC
	return d
}

func TestDefaultConfig(t *testing.T) {
	want := dma.Config{DataSize: dma.Size32, ReadIncrement: true, DREQ: dma.DREQForce}
	if diff := cmp.Diff(dma.DefaultConfig(), want); diff != "" {
		t.Errorf("DefaultConfig() difference (-got +want):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(d *dma.Descriptor)
		dst     int
		wantErr bool
	}{
		{name: "adc one shot", dst: 1},
		{name: "zero count", mutate: func(d *dma.Descriptor) { d.Count = 0 }, dst: 1, wantErr: true},
		{name: "32 bit", mutate: func(d *dma.Descriptor) { d.DataSize = dma.Size32 }, dst: 1, wantErr: true},
		{name: "no destination", dst: 0, wantErr: true},
		{name: "incrementing overrun", mutate: func(d *dma.Descriptor) { d.Count = 4 }, dst: 2, wantErr: true},
		{name: "fixed destination", mutate: func(d *dma.Descriptor) { d.Count = 4; d.WriteIncrement = false }, dst: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := adcDescriptor()
			if tc.mutate != nil {
				tc.mutate(d)
			}
			err := d.Validate(make([]uint16, tc.dst))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %t", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, dma.ErrInvalidDescriptor) {
				t.Errorf("Validate() = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestAwait(t *testing.T) {
	pb := &dmatest.Playback{Samples: []uint16{876}}
	dst := make([]uint16, 1)
	ch, err := pb.Configure(adcDescriptor(), dst)
	if err != nil {
		t.Fatal(err)
	}
	if err := pb.StartConversion(); err != nil {
		t.Fatal(err)
	}
	if err := ch.Start(); err != nil {
		t.Fatal(err)
	}
	if err := dma.Await(ch, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := pb.StopConversion(); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 876 {
		t.Errorf("dst[0] = %d, want 876", dst[0])
	}
	want := []string{
		dmatest.OpConfigure,
		dmatest.OpStartConversion,
		dmatest.OpArm,
		dmatest.OpComplete,
		dmatest.OpStopConversion,
	}
	if diff := cmp.Diff(pb.Ops, want); diff != "" {
		t.Errorf("ops difference (-got +want):\n%s", diff)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestAwaitIdle(t *testing.T) {
	pb := &dmatest.Playback{}
	ch, err := pb.Configure(adcDescriptor(), make([]uint16, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := dma.Await(ch, time.Millisecond); err != nil {
		t.Errorf("Await() on idle channel = %v", err)
	}
}

func TestAwaitTimeout(t *testing.T) {
	for _, tc := range []struct {
		name    string
		convert bool
		stall   map[int]bool
	}{
		// The converter raises the data request; without it nothing moves.
		{name: "conversion not started"},
		{name: "stalled request", convert: true, stall: map[int]bool{0: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pb := &dmatest.Playback{Samples: []uint16{1}, Stall: tc.stall}
			dst := []uint16{0xffff}
			ch, err := pb.Configure(adcDescriptor(), dst)
			if err != nil {
				t.Fatal(err)
			}
			if tc.convert {
				if err := pb.StartConversion(); err != nil {
					t.Fatal(err)
				}
			}
			if err := ch.Start(); err != nil {
				t.Fatal(err)
			}
			start := time.Now()
			err = dma.Await(ch, 2*time.Millisecond)
			if !errors.Is(err, dma.ErrTransferTimeout) {
				t.Fatalf("Await() = %v, want ErrTransferTimeout", err)
			}
			if d := time.Since(start); d < 2*time.Millisecond {
				t.Errorf("Await() returned after %s", d)
			}
			if ch.Busy() {
				t.Error("channel still busy after timeout")
			}
			if got := pb.Ops[len(pb.Ops)-1]; got != dmatest.OpAbort {
				t.Errorf("last op = %q, want %q", got, dmatest.OpAbort)
			}
			if dst[0] != 0xffff {
				t.Errorf("destination written on timeout: %d", dst[0])
			}
		})
	}
}

func TestAwaitFault(t *testing.T) {
	cause := errors.New("bus error")
	pb := &dmatest.Playback{Samples: []uint16{876}, Faults: map[int]error{0: cause}}
	dst := []uint16{0xffff}
	ch, err := pb.Configure(adcDescriptor(), dst)
	if err != nil {
		t.Fatal(err)
	}
	if err := pb.StartConversion(); err != nil {
		t.Fatal(err)
	}
	if err := ch.Start(); err != nil {
		t.Fatal(err)
	}
	err = dma.Await(ch, time.Second)
	if !errors.Is(err, cause) {
		t.Fatalf("Await() = %v, want %v", err, cause)
	}
	if errors.Is(err, dma.ErrTransferTimeout) {
		t.Fatalf("Await() = %v, must not be a timeout", err)
	}
	if dst[0] != 0xffff {
		t.Errorf("destination written on fault: %d", dst[0])
	}
	want := []string{
		dmatest.OpConfigure,
		dmatest.OpStartConversion,
		dmatest.OpArm,
		dmatest.OpFault,
		dmatest.OpAbort,
	}
	if diff := cmp.Diff(pb.Ops, want); diff != "" {
		t.Errorf("ops difference (-got +want):\n%s", diff)
	}

	// The next transfer is not affected.
	if err := ch.Start(); err != nil {
		t.Fatal(err)
	}
	if err := dma.Await(ch, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 876 {
		t.Errorf("dst[0] = %d, want 876", dst[0])
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestStartBeforeConfigure(t *testing.T) {
	pb := &dmatest.Playback{}
	if err := pb.Start(); err == nil {
		t.Error("expected error")
	}
}

func TestSizeString(t *testing.T) {
	for s, want := range map[dma.Size]string{dma.Size8: "8bit", dma.Size16: "16bit", dma.Size32: "32bit", 7: "Size(7)"} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", uint8(s), got, want)
		}
	}
}
