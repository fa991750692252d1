// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dietemp samples the RP2040 on-die temperature sensor through the
// ADC and a DMA channel and shows the reading on a paged monochrome OLED.
//
// The packages are organised one concern per directory:
//
//	rp2temp             sensor transfer function (raw sample to Celsius)
//	adc                 converter start/stop contract
//	dma                 one-shot transfer descriptor and bounded wait
//	rp2                 RP2040 ADC and DMA registers (TinyGo, rp2040 only)
//	softdma, adcsim     host stand-ins built on periph analog pins
//	ssd1306/image1bit   page-organised framebuffer
//	glyph               scaled 6x8 bitmap text
//	ssd1306             I²C display driver and render areas
//	termoled            terminal display for host runs
//	i2cshim             TinyGo I²C buses as periph buses
//	acquisition         the periodic acquisition-to-render loop
package dietemp
