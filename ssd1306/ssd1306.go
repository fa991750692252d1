// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

const (
	_CHARGEPUMP          = 0x8D
	_COLUMNADDR          = 0x21
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DEACTIVATE_SCROLL   = 0x2E
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGEADDR            = 0x22
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

// PageHeight is the number of pixel rows covered by one page of GDDRAM.
const PageHeight = 8

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:                128,
	H:                64,
	MirrorVertical:   false,
	MirrorHorizontal: false,
	Sequential:       false,
	SwapTopBottom:    false,
	Addr:             0x3c,
	Contrast:         0xff,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// Sequential corresponds to the Sequential/Alternative COM pin configuration
	// in the OLED panel hardware. Try toggling this if half the rows appear to be
	// missing on your display. Particularly on 32 pixel height displays.
	Sequential bool
	// MirrorVertical corresponds to the COM remap configuration in the OLED panel
	// hardware. Try toggling this if the display is flipped vertically.
	MirrorVertical bool
	// MirrorHorizontal corresponds to the SEG remap configuration in the OLED panel
	// hardware. Try toggling this if the display is flipped horizontally.
	MirrorHorizontal bool
	// SwapTopBottom corresponds to the Left/Right remap COM pin configuration in
	// the OLED panel hardware. Try toggling this if the top and bottom halves of
	// your display are swapped.
	SwapTopBottom bool
	// The I2C address of the display. 0 selects DefaultOpts.Addr.
	Addr uint16
	// Contrast sent at initialization. 0 selects DefaultOpts.Contrast.
	Contrast byte
}

// RenderError is returned by Render when the bus transfer failed. The
// display content is then undefined until the next successful Render.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "ssd1306: render failed: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// RenderArea is a window of GDDRAM, bounds inclusive.
//
// Its buffer is laid out page by page, each page Columns() bytes wide, which
// is the layout of image1bit.VerticalLSB.Pix when the area spans the whole
// image.
type RenderArea struct {
	StartColumn, EndColumn int
	StartPage, EndPage     int
}

// Columns returns the width of the area in pixels.
func (a RenderArea) Columns() int {
	return a.EndColumn - a.StartColumn + 1
}

// Pages returns the height of the area in pages.
func (a RenderArea) Pages() int {
	return a.EndPage - a.StartPage + 1
}

// BufferLength returns the number of bytes Render expects for this area.
func (a RenderArea) BufferLength() int {
	return a.Columns() * a.Pages()
}

func (a RenderArea) String() string {
	return fmt.Sprintf("columns %d-%d pages %d-%d", a.StartColumn, a.EndColumn, a.StartPage, a.EndPage)
}

// Validate returns an error if the area does not fit a display of the given
// bounds. Bounds must start at {0, 0}.
func (a RenderArea) Validate(bounds image.Rectangle) error {
	if a.StartColumn < 0 || a.StartColumn > a.EndColumn || a.EndColumn >= bounds.Dx() {
		return fmt.Errorf("ssd1306: invalid render area %s for width %d", a, bounds.Dx())
	}
	if a.StartPage < 0 || a.StartPage > a.EndPage || a.EndPage >= bounds.Dy()/PageHeight {
		return fmt.Errorf("ssd1306: invalid render area %s for %d pages", a, bounds.Dy()/PageHeight)
	}
	return nil
}

// NewI2C returns a Dev object that communicates over I²C to a SSD1306 display
// controller.
//
// The controller is reset, configured for horizontal addressing and turned on.
func NewI2C(i i2c.Bus, opts *Opts) (*Dev, error) {
	if opts.Addr == 0x00 {
		opts.Addr = DefaultOpts.Addr
	}
	if opts.Contrast == 0 {
		opts.Contrast = DefaultOpts.Contrast
	}
	if opts.W < 8 || opts.W > 128 || opts.W&7 != 0 {
		return nil, fmt.Errorf("ssd1306: invalid width %d", opts.W)
	}
	if opts.H < 8 || opts.H > 64 || opts.H&7 != 0 {
		return nil, fmt.Errorf("ssd1306: invalid height %d", opts.H)
	}
	// Maximum clock speed is 1/2.5µs = 400KHz.
	d := &Dev{
		c:    &i2c.Dev{Bus: i, Addr: opts.Addr},
		rect: image.Rect(0, 0, opts.W, opts.H),
	}
	if err := d.sendCommand(getInitCmd(opts)); err != nil {
		return nil, fmt.Errorf("ssd1306: init: %w", err)
	}
	return d, nil
}

// Dev is an open handle to the display controller.
type Dev struct {
	c      conn.Conn
	rect   image.Rectangle
	halted bool
}

func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%s, %s}", d.c, d.rect.Max)
}

// Bounds returns the display geometry. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// FullArea returns the area covering the whole display.
func (d *Dev) FullArea() RenderArea {
	return RenderArea{
		StartColumn: 0,
		EndColumn:   d.rect.Dx() - 1,
		StartPage:   0,
		EndPage:     d.rect.Dy()/PageHeight - 1,
	}
}

// NewRenderArea returns the area with the given inclusive bounds, or an
// error if it does not fit the display.
func (d *Dev) NewRenderArea(startColumn, endColumn, startPage, endPage int) (RenderArea, error) {
	a := RenderArea{StartColumn: startColumn, EndColumn: endColumn, StartPage: startPage, EndPage: endPage}
	return a, a.Validate(d.rect)
}

// Render sends buf to the area of GDDRAM described by area.
//
// len(buf) must be exactly area.BufferLength(). It returns once the whole
// buffer is on the bus. Bus failures are returned as *RenderError.
func (d *Dev) Render(buf []byte, area RenderArea) error {
	if err := area.Validate(d.rect); err != nil {
		return err
	}
	if len(buf) != area.BufferLength() {
		return fmt.Errorf("ssd1306: invalid pixel stream length; expected %d bytes for %s, got %d bytes", area.BufferLength(), area, len(buf))
	}
	err := d.sendCommand([]byte{
		_COLUMNADDR, byte(area.StartColumn), byte(area.EndColumn),
		_PAGEADDR, byte(area.StartPage), byte(area.EndPage),
	})
	if err == nil {
		err = d.sendData(buf)
	}
	if err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// Halt turns off the display.
//
// Sending any other command afterward reenables the display.
func (d *Dev) Halt() error {
	d.halted = false
	err := d.sendCommand([]byte{_DISPLAYOFF})
	if err == nil {
		d.halted = true
	}
	return err
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	b := []byte{_NORMALDISPLAY}
	if blackOnWhite {
		b[0] = _INVERTDISPLAY
	}
	return d.sendCommand(b)
}

func getInitCmd(opts *Opts) []byte {
	// Set COM output scan direction; C0 means normal; C8 means reversed
	comScan := byte(_COMSCANDEC)
	// See page 40.
	columnAddr := byte(_SETSEGMENTREMAP)
	if opts.MirrorVertical {
		comScan = byte(_COMSCANINC)
	}
	if opts.MirrorHorizontal {
		columnAddr = byte(_SEGREMAP)
	}
	// See page 40.
	hwLayout := byte(0x02)
	if !opts.Sequential {
		hwLayout |= 0x10
	}
	if opts.SwapTopBottom {
		hwLayout |= 0x20
	}

	// Page 64 has the full recommended flow.
	// Page 28 lists all the commands.
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE,
		columnAddr,
		comScan,
		_SETCOMPINS, hwLayout,
		_SETCONTRAST, opts.Contrast,
		_DISPLAYALLON_RESUME,      // Display follows GDDRAM content
		_NORMALDISPLAY,            // 1 is lit
		_SETDISPLAYCLOCKDIV, 0xF0, // Max oscillator frequency
		_CHARGEPUMP, 0x14, // Enable charge pump regulator; page 62
		_SETPRECHARGE, 0xF1,
		_SETVCOMDETECT, 0x40, // page 32
		_DEACTIVATE_SCROLL,
		_SETMULTIPLEX, byte(opts.H - 1),
		_MEMORYMODE, 0x00, // Horizontal addressing
		_COLUMNADDR, 0, uint8(opts.W - 1),
		_PAGEADDR, 0, uint8(opts.H/PageHeight - 1),
		_DISPLAYON,
	}
}

func (d *Dev) sendData(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		if err := d.sendCommand(nil); err != nil {
			return err
		}
	}
	return d.c.Tx(append([]byte{i2cData}, c...), nil)
}

func (d *Dev) sendCommand(c []byte) error {
	if d.halted {
		// Transparently enable the display.
		c = append([]byte{_DISPLAYON}, c...)
		d.halted = false
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

var _ conn.Resource = &Dev{}
