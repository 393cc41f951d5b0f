// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"os"

	"golang.org/x/sys/unix"
)

const devPortPath = "/dev/port"

// lockDevPort opens /dev/port and takes an exclusive lock on it so two
// handshakes from different processes can never interleave.
func lockDevPort() (*os.File, error) {
	f, err := os.OpenFile(devPortPath, os.O_RDWR, 0600)
	if err != nil {
		return nil, &PermissionError{Op: "open " + devPortPath, Err: err}
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, &PermissionError{Op: "flock " + devPortPath, Err: err}
	}
	return f, nil
}

// devPort reads and writes ports as byte offsets into /dev/port.
type devPort struct {
	p *os.File
}

func openDevPort() (PortIO, error) {
	f, err := lockDevPort()
	if err != nil {
		return nil, err
	}
	return &devPort{p: f}, nil
}

func (d *devPort) In(port uint16) (uint8, error) {
	b := make([]byte, 1)
	if _, err := d.p.ReadAt(b, int64(port)); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *devPort) Out(port uint16, v uint8) error {
	_, err := d.p.WriteAt([]byte{v}, int64(port))
	return err
}

// Closing the file drops the lock.
func (d *devPort) Close() error {
	return d.p.Close()
}
