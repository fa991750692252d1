// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rp2temp converts raw samples of the RP2040 internal temperature
// sensor into temperatures.
//
// The sensor is a biased bipolar diode connected to ADC input 4. Its output
// falls linearly with temperature: 0.706 V at 27 °C with a slope of
// -1.721 mV/°C. The constants are the manufacturer's typical values and are
// not calibrated per part, so readings are only accurate to a few degrees.
//
// # Datasheet
//
// https://datasheets.raspberrypi.com/rp2040/rp2040-datasheet.pdf (section 4.9.5)
package rp2temp
