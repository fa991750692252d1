// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph draws scaled 6x8 bitmap text onto any drivers.Displayer.
//
// Scaling stamps the base glyph scale×scale times at one pixel offsets; it
// thickens strokes rather than enlarging the glyph. Each character advances
// the cursor by 6×scale pixels.
package glyph
