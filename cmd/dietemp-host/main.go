// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// dietemp-host runs the acquisition pipeline on a workstation or a single
// board computer.
//
// The sensor is simulated. The frame goes to the terminal, or to a real
// SSD1306 when -bus is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/GermanBionicSystems/dietemp/acquisition"
	"github.com/GermanBionicSystems/dietemp/adcsim"
	"github.com/GermanBionicSystems/dietemp/rp2temp"
	"github.com/GermanBionicSystems/dietemp/softdma"
	"github.com/GermanBionicSystems/dietemp/ssd1306"
	"github.com/GermanBionicSystems/dietemp/termoled"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use; empty draws in the terminal")
	oled := flag.Bool("oled", false, "use the SSD1306 on -bus instead of the terminal")
	addr := flag.Uint("addr", uint(ssd1306.DefaultOpts.Addr), "SSD1306 I²C address")
	celsius := flag.Float64("celsius", adcsim.DefaultOpts.Celsius, "initial simulated die temperature")
	ramp := flag.Float64("ramp", 0.5, "°C added to the simulated die every cycle")
	noise := flag.Int("noise", 2, "simulated converter noise in LSB")
	interval := flag.Duration("interval", acquisition.DefaultOpts.Interval, "pause between cycles")
	caption := flag.String("caption", acquisition.DefaultOpts.Caption, "first line")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// stdout belongs to the terminal display.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if _, err := host.Init(); err != nil {
		return &acquisition.ConfigurationError{Op: "host", Err: err}
	}

	sopts := adcsim.DefaultOpts
	sopts.Celsius = *celsius
	sopts.Noise = *noise
	pin, err := adcsim.New(&sopts)
	if err != nil {
		return &acquisition.ConfigurationError{Op: "sensor", Err: err}
	}
	conv := softdma.NewConverter(pin)

	opts := acquisition.DefaultOpts
	opts.Interval = *interval
	opts.Caption = *caption
	opts.Logger = logger
	opts.OnState = func(s acquisition.State) {
		if s == acquisition.Sleeping {
			pin.SetTemperature(pin.Temperature() + *ramp)
		}
	}

	var p acquisition.Presenter
	if *oled || *busName != "" {
		b, err := i2creg.Open(*busName)
		if err != nil {
			return &acquisition.ConfigurationError{Op: "bus", Err: err}
		}
		defer b.Close()
		if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
			logger.Warn("keeping bus speed", "bus", b.String(), "err", err)
		}
		dopts := ssd1306.DefaultOpts
		dopts.Addr = uint16(*addr)
		dev, err := ssd1306.NewI2C(b, &dopts)
		if err != nil {
			return &acquisition.ConfigurationError{Op: "display", Err: err}
		}
		defer dev.Halt()
		opts.W, opts.H = dopts.W, dopts.H
		p = dev
	} else {
		topts := termoled.DefaultOpts
		dev, err := termoled.New(&topts)
		if err != nil {
			return &acquisition.ConfigurationError{Op: "display", Err: err}
		}
		defer dev.Halt()
		opts.W, opts.H = topts.W, topts.H
		p = dev
	}

	loop, err := acquisition.New(conv, softdma.NewEngine(conv), p, &opts)
	if err != nil {
		return err
	}
	defer loop.Halt()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var env physic.Env
	rp2temp.Precision(&env)
	logger.Info("running", "loop", loop.String(), "precision", env.Temperature)
	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	s := loop.Stats()
	logger.Info("done", "cycles", s.Cycles, "timeouts", s.Timeouts, "render_failures", s.RenderFailures, "failures", s.Failures, "implausible", s.Implausible)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "dietemp-host: %s.\n", err)
		os.Exit(1)
	}
}
