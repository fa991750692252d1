// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build rp2040

// Package rp2 drives the RP2040 ADC FIFO and DMA channels directly through
// their registers.
//
// ADC implements adc.Reader and DMA implements dma.Engine. Together they move
// one converter sample into memory per started transfer, paced by the ADC
// data request line.
//
// # Datasheet
//
// https://datasheets.raspberrypi.com/rp2040/rp2040-datasheet.pdf, chapters
// 2.5 (DMA) and 4.9 (ADC).
package rp2
