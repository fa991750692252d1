// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dma describes one-shot peripheral-to-memory transfers.
//
// A Descriptor is built once, validated and bound to a destination by an
// Engine. The returned Channel is re-armed with Start for every transfer and
// completion is observed with Await, which is bounded: a transfer whose
// data request never fires is aborted with ErrTransferTimeout instead of
// hanging the caller.
//
// The channel configuration mirrors the RP2040 DMA: a transfer moves Count
// words of DataSize from a fixed source register, paced by a data request
// (DREQ) line.
package dma
