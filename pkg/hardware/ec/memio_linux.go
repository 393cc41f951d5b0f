// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && (amd64 || 386)

package ec

import (
	"os"

	"github.com/u-root/u-root/pkg/memio"
)

// memioPort goes through u-root's memio. The /dev/port handle is only kept
// for its lock, memio opens the device on its own for every access.
type memioPort struct {
	lock *os.File
	in   func(uint16, memio.UintN) error
	out  func(uint16, memio.UintN) error
}

func openMemio() (PortIO, error) {
	f, err := lockDevPort()
	if err != nil {
		return nil, err
	}
	return &memioPort{lock: f, in: memio.In, out: memio.Out}, nil
}

func (m *memioPort) In(port uint16) (uint8, error) {
	var v memio.Uint8
	if err := m.in(port, &v); err != nil {
		return 0, err
	}
	return uint8(v), nil
}

func (m *memioPort) Out(port uint16, v uint8) error {
	d := memio.Uint8(v)
	return m.out(port, &d)
}

func (m *memioPort) Close() error {
	return m.lock.Close()
}
