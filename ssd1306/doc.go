// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 controls a monochrome OLED display via a SSD1306 controller
// over I²C.
//
// The controller runs in horizontal addressing mode. Render sends a
// page-organised buffer (see package image1bit) to a RenderArea, a window of
// columns and pages. The buffer length must match the area exactly.
//
// On the wire every transaction starts with a control byte: 0x00 for a
// stream of commands, 0x40 for a stream of display data.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package ssd1306
