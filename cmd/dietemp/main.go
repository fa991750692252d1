// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build rp2040

// dietemp is the Raspberry Pi Pico firmware: it samples the on-die
// temperature sensor through ADC channel 4 and DMA, and shows it on a
// 128x64 SSD1306 wired to I2C1 (SDA GP14, SCL GP15).
//
// Build with:
//
//	tinygo flash -target pico ./cmd/dietemp
package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"github.com/GermanBionicSystems/dietemp/acquisition"
	"github.com/GermanBionicSystems/dietemp/adc"
	"github.com/GermanBionicSystems/dietemp/i2cshim"
	"github.com/GermanBionicSystems/dietemp/rp2"
	"github.com/GermanBionicSystems/dietemp/ssd1306"
)

const (
	sdaPin = machine.GP14
	sclPin = machine.GP15
)

func mainImpl(logger *slog.Logger) error {
	sdaPin.Configure(machine.PinConfig{Mode: machine.PinI2C})
	sclPin.Configure(machine.PinConfig{Mode: machine.PinI2C})
	err := machine.I2C1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       sdaPin,
		SCL:       sclPin,
	})
	if err != nil {
		return &acquisition.ConfigurationError{Op: "i2c", Err: err}
	}
	bus := i2cshim.New("I2C1", machine.I2C1)

	dopts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(bus, &dopts)
	if err != nil {
		return &acquisition.ConfigurationError{Op: "display", Err: err}
	}

	aopts := adc.DefaultOpts
	conv, err := rp2.NewADC(&aopts)
	if err != nil {
		return &acquisition.ConfigurationError{Op: "adc", Err: err}
	}

	opts := acquisition.DefaultOpts
	opts.W, opts.H = dopts.W, dopts.H
	opts.Logger = logger
	loop, err := acquisition.New(conv, rp2.NewDMA(conv.FIFO()), dev, &opts)
	if err != nil {
		return err
	}
	logger.Info("running", "loop", loop.String(), "display", dev.String())
	return loop.Run(context.Background())
}

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{Level: slog.LevelInfo}))
	err := mainImpl(logger)
	// There is nothing to return to; keep reporting on the console.
	for {
		logger.Error("stopped", "err", err)
		time.Sleep(5 * time.Second)
	}
}
