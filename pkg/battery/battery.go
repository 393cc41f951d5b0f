// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package battery switches the EC between full charge and a firmware
// enforced charge cap.
package battery

import (
	"fmt"
	"io"

	"github.com/u-root/btcon/config"
	"github.com/u-root/btcon/pkg/hardware/ec"
	"github.com/u-root/btcon/pkg/logger"
	"go.uber.org/zap"
)

type Mode int

const (
	Full Mode = iota
	Limited
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "Full"
	case Limited:
		return "Limited"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Change is the battery register before and after a SetMode.
type Change struct {
	Old uint8
	New uint8
}

type Controller struct {
	ec      ec.RegisterIO
	variant config.Variant
	out     io.Writer
	log     *zap.SugaredLogger
}

// New returns a Controller that reports register values to out.
func New(r ec.RegisterIO, v config.Variant, out io.Writer) *Controller {
	return &Controller{
		ec:      r,
		variant: v,
		out:     out,
		log:     logger.LogContainer.GetSimpleLogger(),
	}
}

func (c *Controller) value(m Mode) (uint8, error) {
	switch m {
	case Full:
		return c.variant.Full, nil
	case Limited:
		return c.variant.Limited, nil
	}
	return 0, fmt.Errorf("unknown charge mode %v", m)
}

// SetMode writes the register value for m. The register is read before and
// after the write and both values are printed, even when nothing changes.
func (c *Controller) SetMode(m Mode) (Change, error) {
	want, err := c.value(m)
	if err != nil {
		return Change{}, err
	}
	reg := c.variant.BatteryRegister
	var ch Change
	ch.Old, err = c.ec.Read(reg)
	if err != nil {
		return ch, err
	}
	fmt.Fprintf(c.out, "old value %02x\n", ch.Old)
	if err := c.ec.Write(reg, want); err != nil {
		return ch, err
	}
	ch.New, err = c.ec.Read(reg)
	if err != nil {
		return ch, err
	}
	fmt.Fprintf(c.out, "new value %02x\n", ch.New)
	if ch.New != want {
		c.log.Warnf("EC register 0x%02x reads back 0x%02x after writing 0x%02x, firmware may have rejected %v mode", reg, ch.New, want, m)
	}
	return ch, nil
}

// Classify maps a battery register value to a mode. Only the exact full
// charge value is Full, everything else counts as Limited.
func (c *Controller) Classify(v uint8) Mode {
	if v == c.variant.Full {
		return Full
	}
	return Limited
}

// Known reports whether v is one of the two values the variant defines.
func (c *Controller) Known(v uint8) bool {
	return v == c.variant.Full || v == c.variant.Limited
}

// Status reads the battery register once and classifies it.
func (c *Controller) Status() (Mode, uint8, error) {
	reg := c.variant.BatteryRegister
	v, err := c.ec.Read(reg)
	if err != nil {
		return Limited, 0, err
	}
	if !c.Known(v) {
		c.log.Warnf("EC register 0x%02x holds unrecognised value 0x%02x, reporting limited mode", reg, v)
	}
	return c.Classify(v), v, nil
}

// PrintStatus writes the human readable status line.
func (c *Controller) PrintStatus() error {
	m, _, err := c.Status()
	if err != nil {
		return err
	}
	if m == Full {
		fmt.Fprintln(c.out, "Full charge mode")
	} else {
		fmt.Fprintln(c.out, "Limited charge mode")
	}
	return nil
}
