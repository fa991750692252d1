// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cshim presents a TinyGo I²C bus as a periph i2c.Bus.
//
// It lets the periph style drivers of this module, ssd1306 in particular,
// run unchanged on a microcontroller where the bus is a machine.I2C.
package i2cshim

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// ErrSpeedUnsupported is returned by SetSpeed when the underlying bus has no
// way to change its clock.
var ErrSpeedUnsupported = errors.New("i2cshim: bus speed cannot be changed")

// baudSetter is implemented by machine.I2C.
type baudSetter interface {
	SetBaudRate(br uint32) error
}

// Bus adapts a drivers.I2C.
type Bus struct {
	name string
	b    drivers.I2C
}

// New returns a Bus named name that forwards transactions to b.
func New(name string, b drivers.I2C) *Bus {
	return &Bus{name: name, b: b}
}

func (s *Bus) String() string {
	return s.name
}

// Tx implements i2c.Bus.
func (s *Bus) Tx(addr uint16, w, r []byte) error {
	if err := s.b.Tx(addr, w, r); err != nil {
		return fmt.Errorf("i2cshim: %s: %w", s.name, err)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (s *Bus) SetSpeed(f physic.Frequency) error {
	bs, ok := s.b.(baudSetter)
	if !ok {
		return ErrSpeedUnsupported
	}
	if f <= 0 || f > 10*physic.MegaHertz {
		return fmt.Errorf("i2cshim: invalid speed %s", f)
	}
	return bs.SetBaudRate(uint32(f / physic.Hertz))
}

var _ i2c.Bus = &Bus{}
