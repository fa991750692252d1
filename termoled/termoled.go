// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termoled emulates a paged monochrome OLED in the terminal using
// ANSI color codes.
//
// It accepts the same buffers and render areas as package ssd1306, which
// permits running the acquisition pipeline on a workstation.
package termoled

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/dietemp/ssd1306"
	"github.com/GermanBionicSystems/dietemp/ssd1306/image1bit"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/draw"
)

// Opts represents the options available for this display.
type Opts struct {
	// W and H are the emulated panel geometry in pixels. H must be a multiple
	// of 8.
	W, H int
	// Columns and Rows are the terminal cells the panel is resized to. 0
	// selects W/2 and H/4.
	Columns, Rows int
	// On and Off are the lit and dark pixel colors.
	On, Off color.NRGBA
	Palette *ansi256.Palette
	// Output defaults to a colorable stdout.
	Output io.Writer

	_ struct{}
}

// DefaultOpts emulates a 128x64 blue OLED.
var DefaultOpts = Opts{
	W:   128,
	H:   64,
	On:  color.NRGBA{R: 0x80, G: 0xc0, B: 0xff, A: 0xff},
	Off: color.NRGBA{A: 0xff},
}

// Dev is an OLED emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette
	on, off color.NRGBA

	frame *image1bit.VerticalLSB
	cells *image.Gray
	drawn bool
	buf   bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 || opts.H%ssd1306.PageHeight != 0 {
		return nil, fmt.Errorf("termoled: invalid geometry %dx%d", opts.W, opts.H)
	}
	cols, rows := opts.Columns, opts.Rows
	if cols == 0 {
		cols = (opts.W + 1) / 2
	}
	if rows == 0 {
		rows = (opts.H + 3) / 4
	}
	if cols < 0 || rows < 0 {
		return nil, fmt.Errorf("termoled: invalid terminal size %dx%d", cols, rows)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Output
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		palette: *p,
		on:      opts.On,
		off:     opts.Off,
		frame:   image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
		cells:   image.NewGray(image.Rect(0, 0, cols, rows)),
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("termoled.Dev{%s}", d.frame.Rect.Max)
}

// Bounds returns the emulated panel geometry.
func (d *Dev) Bounds() image.Rectangle {
	return d.frame.Rect
}

// FullArea returns the area covering the whole panel.
func (d *Dev) FullArea() ssd1306.RenderArea {
	return ssd1306.RenderArea{
		EndColumn: d.frame.Rect.Dx() - 1,
		EndPage:   d.frame.Pages() - 1,
	}
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Render copies buf into area of the emulated GDDRAM and redraws the panel.
//
// It has the same contract as ssd1306.Dev.Render.
func (d *Dev) Render(buf []byte, area ssd1306.RenderArea) error {
	if err := area.Validate(d.frame.Rect); err != nil {
		return err
	}
	if len(buf) != area.BufferLength() {
		return fmt.Errorf("termoled: invalid pixel stream length; expected %d bytes for %s, got %d bytes", area.BufferLength(), area, len(buf))
	}
	cols := area.Columns()
	for p := 0; p < area.Pages(); p++ {
		off := (area.StartPage+p)*d.frame.Stride + area.StartColumn
		copy(d.frame.Pix[off:off+cols], buf[p*cols:(p+1)*cols])
	}
	if err := d.refresh(); err != nil {
		return &ssd1306.RenderError{Err: err}
	}
	return nil
}

func (d *Dev) refresh() error {
	draw.NearestNeighbor.Scale(d.cells, d.cells.Rect, d.frame, d.frame.Rect, draw.Src, nil)
	rows := d.cells.Rect.Dy()
	d.buf.Reset()
	if d.drawn {
		// Overwrite the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", rows)
	}
	_, _ = d.buf.WriteString("\r\033[0m")
	for y := 0; y < rows; y++ {
		for x := 0; x < d.cells.Rect.Dx(); x++ {
			c := d.off
			if d.cells.GrayAt(x, y).Y >= 0x80 {
				c = d.on
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ fmt.Stringer = &Dev{}
