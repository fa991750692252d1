// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image1bit implements a 1 bit per pixel image laid out the way
// monochrome OLED controllers store their RAM.
//
// Pixels are grouped in pages, horizontal bands 8 pixels high. Each byte of
// a page is one column: bit 0 is the top pixel, bit 7 the bottom one. A
// 128x64 image is 8 pages of 128 bytes.
package image1bit

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// Bit is a monochrome color.
type Bit bool

const (
	On  Bit = true
	Off Bit = false
)

// RGBA implements color.Color.
func (b Bit) RGBA() (uint32, uint32, uint32, uint32) {
	if b {
		return 65535, 65535, 65535, 65535
	}
	return 0, 0, 0, 65535
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// BitModel converts any color to Bit. Anything brighter than mid gray is On.
var BitModel = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	return Bit((r+g+b)/3 >= 0x8000)
}

// VerticalLSB is a page organised 1 bit image.
type VerticalLSB struct {
	// Pix holds one byte per column per page.
	Pix []byte
	// Stride is the number of bytes in a page.
	Stride int
	Rect   image.Rectangle
}

// NewVerticalLSB returns an initialized, all Off, VerticalLSB. The height is
// rounded up to a whole number of pages.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &VerticalLSB{Rect: r}
	}
	pages := (h + 7) / 8
	return &VerticalLSB{
		Pix:    make([]byte, pages*w),
		Stride: w,
		Rect:   r,
	}
}

// Pages returns the number of pages.
func (i *VerticalLSB) Pages() int {
	if i.Stride == 0 {
		return 0
	}
	return len(i.Pix) / i.Stride
}

// Clear sets every pixel Off.
func (i *VerticalLSB) Clear() {
	clear(i.Pix)
}

// ColorModel implements image.Image.
func (i *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (i *VerticalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *VerticalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt returns the pixel at (x, y). Pixels outside the image are Off.
func (i *VerticalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return Off
	}
	offset, mask := i.pixOffset(x, y)
	return Bit(i.Pix[offset]&mask != 0)
}

// Opaque reports that the image has no transparency.
func (i *VerticalLSB) Opaque() bool {
	return true
}

// Set implements draw.Image.
func (i *VerticalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, convert(c).(Bit))
}

// SetBit sets the pixel at (x, y). Pixels outside the image are ignored.
func (i *VerticalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	offset, mask := i.pixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// Size implements drivers.Displayer.
func (i *VerticalLSB) Size() (int16, int16) {
	return int16(i.Rect.Dx()), int16(i.Rect.Dy())
}

// SetPixel implements drivers.Displayer. Coordinates are relative to
// Rect.Min.
func (i *VerticalLSB) SetPixel(x, y int16, c color.RGBA) {
	i.SetBit(i.Rect.Min.X+int(x), i.Rect.Min.Y+int(y), convert(c).(Bit))
}

// Display implements drivers.Displayer.
//
// The image is off-screen; pushing it to a panel is the display driver's
// job, so this is a no-op.
func (i *VerticalLSB) Display() error {
	return nil
}

func (i *VerticalLSB) pixOffset(x, y int) (int, byte) {
	x -= i.Rect.Min.X
	y -= i.Rect.Min.Y
	return (y/8)*i.Stride + x, 1 << uint(y&7)
}

var _ drivers.Displayer = &VerticalLSB{}
