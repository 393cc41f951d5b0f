// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

type Version struct {
	Version string
	GitHash string
}

// Ports are the two legacy ACPI EC I/O ports.
type Ports struct {
	Command uint16 `json:"command"`
	Data    uint16 `json:"data"`
}

// Status holds bit positions inside the EC status byte.
type Status struct {
	InputBufferFull  uint `json:"input_buffer_full"`
	OutputBufferFull uint `json:"output_buffer_full"`
}

type Opcodes struct {
	Read  uint8 `json:"read"`
	Write uint8 `json:"write"`
	// Query (SCI event query) is part of the EC command set but nothing
	// in btcon issues it.
	Query uint8 `json:"query"`
}

type Poll struct {
	Attempts   int `json:"attempts"`
	IntervalMs int `json:"interval_ms"`
}

func (p Poll) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// Variant is the battery-control register and its two mode values for one
// firmware family.
type Variant struct {
	BatteryRegister uint8 `json:"battery_register"`
	Full            uint8 `json:"full"`
	Limited         uint8 `json:"limited"`
}

type Config struct {
	Ports    Ports              `json:"ports"`
	Status   Status             `json:"status"`
	Opcodes  Opcodes            `json:"opcodes"`
	Poll     Poll               `json:"poll"`
	Variant  string             `json:"variant"`
	Variants map[string]Variant `json:"variants"`
	// Backend is one of "ioperm", "devport" or "memio".
	Backend string  `json:"backend"`
	LogFile string  `json:"log_file"`
	Version Version `json:"-"`
}

var DefaultConfig = &Config{
	Ports: Ports{
		Command: 0x66,
		Data:    0x62,
	},
	Status: Status{
		InputBufferFull:  1,
		OutputBufferFull: 0,
	},
	Opcodes: Opcodes{
		Read:  0x80,
		Write: 0x81,
		Query: 0x84,
	},
	// 100 polls 1ms apart, roughly 100ms before a handshake is declared dead.
	Poll: Poll{
		Attempts:   100,
		IntervalMs: 1,
	},
	Variant: "default",
	Variants: map[string]Variant{
		"default": {BatteryRegister: 0xed, Full: 0x40, Limited: 0x42},
		// Found on older firmware of the same family.
		"orig": {BatteryRegister: 0x0a, Full: 0x41, Limited: 0x21},
	},
	Backend: "ioperm",
	Version: Version{
		Version: gitVersion,
		GitHash: gitHash,
	},
}

// Set by the linker.
var (
	gitVersion = "dev"
	gitHash    = ""
)

// ErrUnknownVariant is returned when the selected variant is not defined.
var ErrUnknownVariant = errors.New("unknown variant")

// SelectedVariant returns the variant named by c.Variant.
func (c *Config) SelectedVariant() (Variant, error) {
	v, ok := c.Variants[c.Variant]
	if !ok {
		return Variant{}, fmt.Errorf("%w %q, known variants: %v", ErrUnknownVariant, c.Variant, c.VariantNames())
	}
	return v, nil
}

func (c *Config) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for n := range c.Variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so callers can overlay settings without
// touching DefaultConfig.
func (c *Config) Clone() *Config {
	n := *c
	n.Variants = make(map[string]Variant, len(c.Variants))
	for k, v := range c.Variants {
		n.Variants[k] = v
	}
	return &n
}

func (c *Config) Validate() error {
	if c.Ports.Command == c.Ports.Data {
		return fmt.Errorf("command and data port are both %#x", c.Ports.Command)
	}
	if c.Status.InputBufferFull > 7 || c.Status.OutputBufferFull > 7 {
		return fmt.Errorf("status bit positions must be 0-7, got ibf=%d obf=%d",
			c.Status.InputBufferFull, c.Status.OutputBufferFull)
	}
	if c.Poll.Attempts < 1 {
		return fmt.Errorf("poll attempts must be at least 1, got %d", c.Poll.Attempts)
	}
	if c.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll interval must not be negative, got %dms", c.Poll.IntervalMs)
	}
	v, err := c.SelectedVariant()
	if err != nil {
		return err
	}
	if v.Full == v.Limited {
		return fmt.Errorf("variant %q uses 0x%02x for both full and limited", c.Variant, v.Full)
	}
	return nil
}
