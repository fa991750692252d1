// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyph

import (
	"errors"
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"
)

const (
	// CellWidth is the horizontal advance of one character at scale 1.
	CellWidth = 6
	// Height is the height of one character cell at scale 1.
	Height = 8
)

// ErrOutOfBounds is returned when text would not fit on the target.
// Nothing is drawn in that case.
var ErrOutOfBounds = errors.New("glyph: text out of bounds")

// Ink is the color used to set pixels.
var Ink = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// TextWidth returns the number of columns text spans at scale.
func TextWidth(text string, scale int) int {
	return len(text) * CellWidth * scale
}

// TextHeight returns the number of rows any text spans at scale.
func TextHeight(scale int) int {
	return Height + scale - 1
}

// CenterX returns the x coordinate that centers textWidth within width.
func CenterX(width, textWidth int) int {
	return (width - textWidth) / 2
}

// DrawText stamps text with its top left corner at (x, y).
//
// Each byte of text is one character. It returns the cursor position after
// the last character. Pixels are only ever set, never cleared; clear the
// target first to avoid leftovers from earlier text.
func DrawText(dst drivers.Displayer, x, y int, text string, scale int) (int, error) {
	if scale < 1 {
		return x, fmt.Errorf("glyph: invalid scale %d", scale)
	}
	w, h := dst.Size()
	if x < 0 || y < 0 || x+TextWidth(text, scale) > int(w) || y+TextHeight(scale) > int(h) {
		return x, fmt.Errorf("%w: %q at (%d,%d) scale %d on %dx%d", ErrOutOfBounds, text, x, y, scale, w, h)
	}
	baseline := y + Height - 1
	for i := 0; i < len(text); i++ {
		g := Font.GetGlyph(rune(text[i]))
		for dx := 0; dx < scale; dx++ {
			for dy := 0; dy < scale; dy++ {
				g.Draw(dst, int16(x+dx), int16(baseline+dy), Ink)
			}
		}
		x += CellWidth * scale
	}
	return x, nil
}
