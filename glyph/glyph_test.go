// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyph

import (
	"errors"
	"image"
	"testing"

	"github.com/GermanBionicSystems/dietemp/ssd1306/image1bit"
	"github.com/google/go-cmp/cmp"
)

func newBuffer() *image1bit.VerticalLSB {
	return image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
}

func TestDrawText_scale1(t *testing.T) {
	img := newBuffer()
	end, err := DrawText(img, 0, 0, "A1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if end != 12 {
		t.Fatalf("end = %d, want 12", end)
	}
	want := []byte{0x7e, 0x11, 0x11, 0x11, 0x7e, 0x00, 0x00, 0x42, 0x7f, 0x40, 0x00, 0x00}
	if diff := cmp.Diff(img.Pix[:12], want); diff != "" {
		t.Fatalf("page 0 (-got +want)\n%s", diff)
	}
	for i, b := range img.Pix[128:] {
		if b != 0 {
			t.Fatalf("Pix[%d] = %#x outside of page 0", 128+i, b)
		}
	}
}

func TestDrawText_scale2(t *testing.T) {
	img := newBuffer()
	end, err := DrawText(img, 0, 0, "A", 2)
	if err != nil {
		t.Fatal(err)
	}
	if end != 12 {
		t.Fatalf("end = %d, want 12", end)
	}
	want := []byte{0xfe, 0xff, 0x33, 0x33, 0xff, 0xfe, 0x00}
	if diff := cmp.Diff(img.Pix[:7], want); diff != "" {
		t.Fatalf("page 0 (-got +want)\n%s", diff)
	}
	if img.Pix[128] != 0 || img.Pix[129] != 0 {
		t.Fatalf("unexpected ink on page 1: %#x %#x", img.Pix[128], img.Pix[129])
	}
}

func TestDrawText_pageStraddle(t *testing.T) {
	img := newBuffer()
	// Starting at row 4 splits each glyph over two pages.
	if _, err := DrawText(img, 0, 4, "-", 1); err != nil {
		t.Fatal(err)
	}
	// '-' is bit 3 in every column: row 7, the last row of page 0.
	for x := 0; x < 5; x++ {
		if img.Pix[x] != 0x80 {
			t.Fatalf("Pix[%d] = %#x, want 0x80", x, img.Pix[x])
		}
		if img.Pix[128+x] != 0 {
			t.Fatalf("Pix[%d] = %#x, want 0", 128+x, img.Pix[128+x])
		}
	}
}

func TestDrawText_onlySetsPixels(t *testing.T) {
	img := newBuffer()
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	if _, err := DrawText(img, 0, 0, "8", 1); err != nil {
		t.Fatal(err)
	}
	for i, b := range img.Pix {
		if b != 0xff {
			t.Fatalf("Pix[%d] = %#x, want 0xff", i, b)
		}
	}
}

func TestDrawText_bounds(t *testing.T) {
	for _, tc := range []struct {
		name  string
		x, y  int
		text  string
		scale int
		ok    bool
	}{
		{"origin", 0, 0, "X", 1, true},
		{"exact width", 2, 0, "ABCDEFGHIJKLMNOPQRSTU", 1, true},
		{"exact height scale 1", 0, 56, "X", 1, true},
		{"exact height scale 2", 0, 55, "X", 2, true},
		{"empty text", 128, 0, "", 1, true},
		{"negative x", -1, 0, "X", 1, false},
		{"negative y", 0, -1, "X", 1, false},
		{"too wide", 0, 0, "ABC", 8, false},
		{"right edge", 123, 0, "X", 1, false},
		{"too low scale 1", 0, 57, "X", 1, false},
		{"too low scale 2", 0, 56, "X", 2, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := newBuffer()
			_, err := DrawText(img, tc.x, tc.y, tc.text, tc.scale)
			if tc.ok {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("err = %v, want ErrOutOfBounds", err)
			}
			for i, b := range img.Pix {
				if b != 0 {
					t.Fatalf("Pix[%d] = %#x after failed draw", i, b)
				}
			}
		})
	}
}

func TestDrawText_invalidScale(t *testing.T) {
	if _, err := DrawText(newBuffer(), 0, 0, "X", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth("27.1C", 2); got != 60 {
		t.Fatalf("TextWidth = %d, want 60", got)
	}
	if got := TextHeight(3); got != 10 {
		t.Fatalf("TextHeight = %d, want 10", got)
	}
}

func TestCenterX(t *testing.T) {
	for _, tc := range []struct {
		width, text, want int
	}{
		{128, 72, 28},
		{128, 60, 34},
		{128, 61, 33},
		{128, 128, 0},
	} {
		if got := CenterX(tc.width, tc.text); got != tc.want {
			t.Errorf("CenterX(%d, %d) = %d, want %d", tc.width, tc.text, got, tc.want)
		}
	}
}

func TestFont(t *testing.T) {
	if got := Font.GetYAdvance(); got != Height {
		t.Fatalf("GetYAdvance = %d", got)
	}
	info := Font.GetGlyph('A').Info()
	if info.Rune != 'A' || info.XAdvance != CellWidth || info.YOffset != -7 {
		t.Fatalf("unexpected info %+v", info)
	}
	// Runes outside printable ASCII draw nothing.
	img := newBuffer()
	Font.GetGlyph('é').Draw(img, 0, 7, Ink)
	Font.GetGlyph('\n').Draw(img, 0, 7, Ink)
	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = %#x", i, b)
		}
	}
}
