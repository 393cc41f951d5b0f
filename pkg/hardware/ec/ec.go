// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Library for talking to an ACPI embedded controller over the legacy
// command/status and data I/O ports.
//
// Every register access is a small handshake: the host waits for the input
// buffer to drain before each byte it sends and for the output buffer to
// fill before it reads a result. The EC firmware is slow and stateful, a
// byte written out of turn is silently dropped or, worse, misinterpreted as
// the next command. Writing the wrong value to the wrong register can cut
// charging, spin fans down or power the machine off. Be careful.
//
// Call ec.Open() first and Close() when done. The port permission is held
// for the lifetime of the returned EC.
package ec

import (
	"fmt"

	"github.com/jmhodges/clock"
	"github.com/u-root/btcon/config"
	"github.com/u-root/btcon/pkg/logger"
	"go.uber.org/zap"
)

// PortIO moves single bytes over the EC ports.
type PortIO interface {
	In(port uint16) (uint8, error)
	Out(port uint16, v uint8) error
	Close() error
}

// RegisterIO reads and writes single EC registers.
type RegisterIO interface {
	Read(reg uint8) (uint8, error)
	Write(reg uint8, v uint8) error
}

type EC struct {
	io      PortIO
	ports   config.Ports
	status  config.Status
	opcodes config.Opcodes
	poll    config.Poll
	clk     clock.Clock
	metrics *Metrics
	log     *zap.SugaredLogger
}

type Option func(*EC)

// WithClock replaces the wall clock used for poll sleeps.
func WithClock(c clock.Clock) Option {
	return func(e *EC) {
		e.clk = c
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *EC) {
		e.metrics = m
	}
}

// Open acquires the port backend named by c.Backend.
func Open(c *config.Config, opts ...Option) (*EC, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, err := openPorts(c)
	if err != nil {
		return nil, err
	}
	return OpenWithPorts(p, c, opts...), nil
}

func OpenWithPorts(p PortIO, c *config.Config, opts ...Option) *EC {
	e := &EC{
		io:      p,
		ports:   c.Ports,
		status:  c.Status,
		opcodes: c.Opcodes,
		poll:    c.Poll,
		clk:     clock.New(),
		log:     logger.LogContainer.GetSimpleLogger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *EC) Close() error {
	return e.io.Close()
}

func openPorts(c *config.Config) (PortIO, error) {
	switch c.Backend {
	case "ioperm":
		return openIoperm(c.Ports)
	case "devport":
		return openDevPort()
	case "memio":
		return openMemio()
	}
	return nil, fmt.Errorf("unknown port backend %q, want ioperm, devport or memio", c.Backend)
}

// Read returns the value of EC register reg.
func (e *EC) Read(reg uint8) (uint8, error) {
	if err := e.waitInputEmpty(); err != nil {
		return 0, fmt.Errorf("EC read 0x%02x: %w", reg, err)
	}
	if err := e.out(e.ports.Command, e.opcodes.Read); err != nil {
		return 0, fmt.Errorf("EC read 0x%02x: %w", reg, err)
	}
	if err := e.waitInputEmpty(); err != nil {
		return 0, fmt.Errorf("EC read 0x%02x: %w", reg, err)
	}
	if err := e.out(e.ports.Data, reg); err != nil {
		return 0, fmt.Errorf("EC read 0x%02x: %w", reg, err)
	}
	if err := e.waitOutputFull(); err != nil {
		return 0, fmt.Errorf("EC read 0x%02x: %w", reg, err)
	}
	v, err := e.in(e.ports.Data)
	if err != nil {
		return 0, fmt.Errorf("EC read 0x%02x: %w", reg, err)
	}
	e.log.Debugf("EC read 0x%02x = 0x%02x", reg, v)
	return v, nil
}

// Write stores v in EC register reg. It returns once the EC has consumed
// the value byte.
func (e *EC) Write(reg uint8, v uint8) error {
	steps := []struct {
		port uint16
		b    uint8
	}{
		{e.ports.Command, e.opcodes.Write},
		{e.ports.Data, reg},
		{e.ports.Data, v},
	}
	for _, s := range steps {
		if err := e.waitInputEmpty(); err != nil {
			return fmt.Errorf("EC write 0x%02x: %w", reg, err)
		}
		if err := e.out(s.port, s.b); err != nil {
			return fmt.Errorf("EC write 0x%02x: %w", reg, err)
		}
	}
	// Make sure the value is latched before anyone reads it back.
	if err := e.waitInputEmpty(); err != nil {
		return fmt.Errorf("EC write 0x%02x: %w", reg, err)
	}
	e.log.Debugf("EC write 0x%02x = 0x%02x", reg, v)
	return nil
}

func (e *EC) waitInputEmpty() error {
	return e.wait(e.ports.Command, e.status.InputBufferFull, 0)
}

func (e *EC) waitOutputFull() error {
	return e.wait(e.ports.Command, e.status.OutputBufferFull, 1)
}

func (e *EC) in(port uint16) (uint8, error) {
	v, err := e.io.In(port)
	if err != nil {
		return 0, fmt.Errorf("inb(%#x): %w", port, err)
	}
	e.metrics.portOp(port, "in")
	return v, nil
}

func (e *EC) out(port uint16, v uint8) error {
	if err := e.io.Out(port, v); err != nil {
		return fmt.Errorf("outb(0x%02x, %#x): %w", v, port, err)
	}
	e.metrics.portOp(port, "out")
	return nil
}
