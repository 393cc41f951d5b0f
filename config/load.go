// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// LoadFile reads a JSON config from the host filesystem and overlays it on
// DefaultConfig.
func LoadFile(file string) (*Config, error) {
	return load(afero.NewOsFs(), file)
}

// variantOverlay is a variant as written in a file, nil fields are absent.
type variantOverlay struct {
	BatteryRegister *uint8 `json:"battery_register"`
	Full            *uint8 `json:"full"`
	Limited         *uint8 `json:"limited"`
}

// merge applies o over v. A variant the defaults do not know must name all
// of its fields.
func (o *variantOverlay) merge(name string, v Variant, known bool) (Variant, error) {
	if !known && (o.BatteryRegister == nil || o.Full == nil || o.Limited == nil) {
		return v, fmt.Errorf("new variant %q must set battery_register, full and limited", name)
	}
	if o.BatteryRegister != nil {
		v.BatteryRegister = *o.BatteryRegister
	}
	if o.Full != nil {
		v.Full = *o.Full
	}
	if o.Limited != nil {
		v.Limited = *o.Limited
	}
	return v, nil
}

func decodeStrict(b []byte, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	return d.Decode(v)
}

// Fields present in the file replace the defaults. Variants are merged by
// name and then field by field. An empty path yields the defaults.
func load(fs afero.Fs, file string) (*Config, error) {
	c := DefaultConfig.Clone()
	if file == "" {
		return c, nil
	}
	b, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	// The outer Variants field shadows Config.Variants.
	f := struct {
		*Config
		Variants map[string]json.RawMessage `json:"variants"`
	}{Config: c}
	if err := decodeStrict(b, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", file, err)
	}
	for name, raw := range f.Variants {
		var o variantOverlay
		if err := decodeStrict(raw, &o); err != nil {
			return nil, fmt.Errorf("parsing config %s: variant %q: %w", file, name, err)
		}
		old, known := c.Variants[name]
		v, err := o.merge(name, old, known)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", file, err)
		}
		c.Variants[name] = v
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", file, err)
	}
	return c, nil
}
