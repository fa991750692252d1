// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package acquisition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/GermanBionicSystems/dietemp/adc"
	"github.com/GermanBionicSystems/dietemp/dma"
	"github.com/GermanBionicSystems/dietemp/glyph"
	"github.com/GermanBionicSystems/dietemp/rp2temp"
	"github.com/GermanBionicSystems/dietemp/ssd1306"
	"github.com/GermanBionicSystems/dietemp/ssd1306/image1bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// State is the phase of the current cycle.
type State int

// Cycle phases, in order.
const (
	Idle State = iota
	Converting
	AwaitingTransfer
	Rendering
	Sleeping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Converting:
		return "Converting"
	case AwaitingTransfer:
		return "AwaitingTransfer"
	case Rendering:
		return "Rendering"
	case Sleeping:
		return "Sleeping"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Presenter pushes a page-organised buffer to a display. Render blocks until
// the buffer is sent. ssd1306.Dev and termoled.Dev implement it.
type Presenter interface {
	// Bounds is the display geometry. It must match Opts.W and Opts.H.
	Bounds() image.Rectangle
	Render(buf []byte, area ssd1306.RenderArea) error
}

// canvas is the frame a cycle composes into.
type canvas interface {
	drivers.Displayer
	Clear()
}

// ErrSampleRange is returned by Cycle when the transferred sample exceeds the
// converter resolution.
var ErrSampleRange = errors.New("acquisition: sample out of converter range")

// ImplausibleText replaces the value when the reading is outside of the die
// operating range.
const ImplausibleText = "ERR"

// Opts is the loop configuration.
type Opts struct {
	// W and H are the display geometry in pixels. H must be a multiple of 8.
	W, H int
	// Interval is the pause between two cycles.
	Interval time.Duration
	// TransferTimeout bounds the wait for the DMA transfer.
	TransferTimeout time.Duration

	// Caption is drawn at (CaptionX, CaptionY), top left corner.
	Caption            string
	CaptionX, CaptionY int
	// ValueX is ignored when Center is set.
	ValueX, ValueY int
	Center         bool
	// Decimals is the number of digits after the decimal point.
	Decimals int
	// Scale applies to both lines.
	Scale int

	// FullScale and BitDepth describe the converter.
	FullScale float64
	BitDepth  int

	// Logger defaults to discarding everything.
	Logger *slog.Logger
	// OnState is called synchronously on every state change.
	OnState func(State)
}

// DefaultOpts is a 128x64 panel refreshed twice a second.
var DefaultOpts = Opts{
	W:               128,
	H:               64,
	Interval:        500 * time.Millisecond,
	TransferTimeout: dma.DefaultTimeout,
	Caption:         "RP2040",
	CaptionX:        40,
	CaptionY:        20,
	ValueX:          50,
	ValueY:          40,
	Center:          true,
	Decimals:        1,
	Scale:           2,
	FullScale:       rp2temp.DefaultFullScale,
	BitDepth:        rp2temp.DefaultBitDepth,
}

// Reading is the result of one successful transfer.
type Reading struct {
	Raw         uint16
	Celsius     float64
	Temperature physic.Temperature
	Plausible   bool
	At          time.Time
}

// Stats are counters since New.
type Stats struct {
	// Cycles counts started cycles.
	Cycles         uint64
	Timeouts       uint64
	RenderFailures uint64
	// ComposeFailures counts values that did not fit the display.
	ComposeFailures uint64
	Implausible     uint64
	// Failures counts converter or channel errors other than timeouts,
	// including samples out of the converter range.
	Failures uint64
	Last     Reading
}

// Loop is the acquisition state machine.
type Loop struct {
	opts      Opts
	reader    adc.Reader
	ch        dma.Channel
	presenter Presenter
	log       *slog.Logger

	// sample is the cell the channel writes into. It is zeroed before every
	// transfer.
	sample []uint16
	max    uint16
	frame  canvas
	pix    []byte
	area   ssd1306.RenderArea

	mu    sync.Mutex
	state State
	stats Stats
}

// New validates the layout, configures a DMA channel from reader into the
// loop's sample cell and returns an idle Loop.
//
// Every failure is a *ConfigurationError.
func New(reader adc.Reader, engine dma.Engine, p Presenter, opts *Opts) (*Loop, error) {
	o := *opts
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.W <= 0 || o.H <= 0 {
		return nil, &ConfigurationError{Op: "layout", Err: fmt.Errorf("invalid geometry %dx%d", o.W, o.H)}
	}
	if o.Interval <= 0 {
		return nil, &ConfigurationError{Op: "layout", Err: fmt.Errorf("invalid interval %s", o.Interval)}
	}
	if o.Scale < 1 {
		return nil, &ConfigurationError{Op: "layout", Err: fmt.Errorf("invalid scale %d", o.Scale)}
	}
	if o.Decimals < 0 {
		return nil, &ConfigurationError{Op: "layout", Err: fmt.Errorf("invalid decimals %d", o.Decimals)}
	}
	if o.BitDepth < 1 || o.BitDepth > 16 || o.FullScale <= 0 {
		return nil, &ConfigurationError{Op: "converter", Err: fmt.Errorf("invalid converter %d bits %gV", o.BitDepth, o.FullScale)}
	}
	fb := image1bit.NewVerticalLSB(image.Rect(0, 0, o.W, o.H))
	l := &Loop{
		opts:      o,
		reader:    reader,
		presenter: p,
		log:       o.Logger,
		sample:    make([]uint16, 1),
		max:       (&adc.Opts{Bits: o.BitDepth}).Max(),
		frame:     fb,
		pix:       fb.Pix,
		area: ssd1306.RenderArea{
			StartColumn: 0,
			EndColumn:   o.W - 1,
			StartPage:   0,
			EndPage:     o.H/ssd1306.PageHeight - 1,
		},
	}
	if n := l.area.BufferLength(); n != len(l.pix) {
		return nil, &ConfigurationError{Op: "layout", Err: fmt.Errorf("render area %s needs %d bytes, framebuffer has %d", l.area, n, len(l.pix))}
	}
	if b := p.Bounds(); b != fb.Bounds() {
		return nil, &ConfigurationError{Op: "layout", Err: fmt.Errorf("display is %s, layout is %s", b, fb.Bounds())}
	}
	if err := l.area.Validate(p.Bounds()); err != nil {
		return nil, &ConfigurationError{Op: "layout", Err: err}
	}
	if _, err := glyph.DrawText(fb, o.CaptionX, o.CaptionY, o.Caption, o.Scale); err != nil {
		return nil, &ConfigurationError{Op: "caption", Err: err}
	}
	fb.Clear()
	if o.ValueY < 0 || o.ValueY+glyph.TextHeight(o.Scale) > o.H {
		return nil, &ConfigurationError{Op: "value", Err: fmt.Errorf("%w: row %d", glyph.ErrOutOfBounds, o.ValueY)}
	}

	d := dma.Descriptor{
		Config: dma.Config{
			DataSize:       dma.Size16,
			ReadIncrement:  false,
			WriteIncrement: true,
			DREQ:           dma.DREQADC,
		},
		Count: uint32(len(l.sample)),
	}
	ch, err := engine.Configure(&d, l.sample)
	if err != nil {
		return nil, &ConfigurationError{Op: "dma", Err: err}
	}
	l.ch = ch
	l.log.Debug("configured", "channel", ch.String(), "resolution", rp2temp.Resolution(o.FullScale, o.BitDepth), "max", l.max)
	return l, nil
}

func (l *Loop) String() string {
	return fmt.Sprintf("acquisition.Loop{%s, %s}", l.reader, l.ch)
}

// Halt stops conversion and releases the DMA channel.
func (l *Loop) Halt() error {
	err := l.reader.StopConversion()
	if err2 := l.ch.Halt(); err == nil {
		err = err2
	}
	return err
}

// State returns the current phase.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stats returns a snapshot of the counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Run repeats Cycle every Opts.Interval until ctx is done.
//
// Cycle errors are logged and counted, never returned. Cancellation is only
// observed between cycles. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTimer(l.opts.Interval)
	defer t.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = l.Cycle()
		t.Reset(l.opts.Interval)
		select {
		case <-ctx.Done():
			l.setState(Idle)
			return ctx.Err()
		case <-t.C:
		}
		l.setState(Idle)
	}
}

// Cycle runs one acquisition cycle and leaves the loop Sleeping.
//
// The returned error wraps dma.ErrTransferTimeout when the transfer did not
// complete, wraps the channel or converter error when the transfer failed,
// wraps ErrSampleRange when the sample cannot come from the converter, and is
// a *ssd1306.RenderError (or what the Presenter returned) when the display
// could not be updated.
func (l *Loop) Cycle() (Reading, error) {
	defer l.setState(Sleeping)
	cycle := l.count(func(s *Stats) { s.Cycles++ })

	l.setState(Converting)
	if err := l.reader.StartConversion(); err != nil {
		l.count(func(s *Stats) { s.Failures++ })
		l.log.Warn("start conversion failed", "cycle", cycle, "err", err)
		return Reading{}, fmt.Errorf("acquisition: start conversion: %w", err)
	}
	clear(l.sample)
	if err := l.ch.Start(); err != nil {
		_ = l.reader.StopConversion()
		l.count(func(s *Stats) { s.Failures++ })
		l.log.Warn("arm transfer failed", "cycle", cycle, "err", err)
		return Reading{}, fmt.Errorf("acquisition: arm transfer: %w", err)
	}

	l.setState(AwaitingTransfer)
	err := dma.Await(l.ch, l.opts.TransferTimeout)
	if err2 := l.reader.StopConversion(); err2 != nil && err == nil {
		err = fmt.Errorf("acquisition: stop conversion: %w", err2)
	}
	if err != nil {
		if errors.Is(err, dma.ErrTransferTimeout) {
			l.count(func(s *Stats) { s.Timeouts++ })
		} else {
			l.count(func(s *Stats) { s.Failures++ })
		}
		l.log.Warn("cycle skipped", "cycle", cycle, "err", err)
		return Reading{}, err
	}

	if raw := l.sample[0]; raw > l.max {
		l.count(func(s *Stats) { s.Failures++ })
		l.log.Warn("cycle skipped", "cycle", cycle, "raw", raw, "max", l.max)
		return Reading{}, fmt.Errorf("%w: %d > %d", ErrSampleRange, raw, l.max)
	}

	l.setState(Rendering)
	r := l.convert(l.sample[0])
	l.mu.Lock()
	l.stats.Last = r
	l.mu.Unlock()
	l.log.Debug("reading", "cycle", cycle, "raw", r.Raw, "celsius", r.Celsius)
	if !r.Plausible {
		l.count(func(s *Stats) { s.Implausible++ })
		l.log.Warn("implausible reading", "cycle", cycle, "raw", r.Raw, "celsius", r.Celsius)
	}

	l.compose(cycle, r)
	if err := l.presenter.Render(l.pix, l.area); err != nil {
		l.count(func(s *Stats) { s.RenderFailures++ })
		l.log.Warn("render failed", "cycle", cycle, "err", err)
		return r, err
	}
	return r, nil
}

func (l *Loop) convert(raw uint16) Reading {
	c := rp2temp.ToCelsius(raw, l.opts.FullScale, l.opts.BitDepth)
	return Reading{
		Raw:         raw,
		Celsius:     c,
		Temperature: rp2temp.ToTemperature(raw, l.opts.FullScale, l.opts.BitDepth),
		Plausible:   rp2temp.Plausible(c),
		At:          time.Now(),
	}
}

// compose redraws the whole frame. A value that does not fit is left out.
func (l *Loop) compose(cycle uint64, r Reading) {
	l.frame.Clear()
	// The caption was validated by New.
	_, _ = glyph.DrawText(l.frame, l.opts.CaptionX, l.opts.CaptionY, l.opts.Caption, l.opts.Scale)
	text := FormatValue(r, l.opts.Decimals)
	x := l.opts.ValueX
	if l.opts.Center {
		x = glyph.CenterX(l.opts.W, glyph.TextWidth(text, l.opts.Scale))
	}
	if _, err := glyph.DrawText(l.frame, x, l.opts.ValueY, text, l.opts.Scale); err != nil {
		l.count(func(s *Stats) { s.ComposeFailures++ })
		l.log.Warn("value does not fit", "cycle", cycle, "text", text, "err", err)
	}
}

// FormatValue returns the text shown for r: Celsius with decimals digits
// followed by "C", or ImplausibleText.
func FormatValue(r Reading, decimals int) string {
	if !r.Plausible {
		return ImplausibleText
	}
	return strconv.FormatFloat(r.Celsius, 'f', decimals, 64) + "C"
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	changed := l.state != s
	l.state = s
	l.mu.Unlock()
	if changed && l.opts.OnState != nil {
		l.opts.OnState(s)
	}
}

// count applies f to the counters and returns the cycle number.
func (l *Loop) count(f func(*Stats)) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(&l.stats)
	return l.stats.Cycles
}

var _ conn.Resource = &Loop{}
