// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && (amd64 || 386)

package ec

import (
	"fmt"
	"runtime"

	"github.com/u-root/btcon/config"
	"golang.org/x/sys/unix"
)

// iopermPort executes inb/outb directly after asking the kernel for the
// two ports in the TSS I/O bitmap.
type iopermPort struct {
	ports []uint16
}

func openIoperm(p config.Ports) (PortIO, error) {
	// The I/O bitmap belongs to the calling thread. Keep this goroutine on
	// it for the rest of the process, otherwise the next inb may fault.
	runtime.LockOSThread()
	ports := []uint16{p.Data, p.Command}
	for _, port := range ports {
		if err := unix.Ioperm(int(port), 1, 1); err != nil {
			runtime.UnlockOSThread()
			return nil, &PermissionError{Op: fmt.Sprintf("ioperm(%#x, 1, 1)", port), Err: err}
		}
	}
	return &iopermPort{ports: ports}, nil
}

func (p *iopermPort) In(port uint16) (uint8, error) {
	return inb(port), nil
}

func (p *iopermPort) Out(port uint16, v uint8) error {
	outb(port, v)
	return nil
}

func (p *iopermPort) Close() error {
	defer runtime.UnlockOSThread()
	for _, port := range p.ports {
		if err := unix.Ioperm(int(port), 1, 0); err != nil {
			return fmt.Errorf("ioperm(%#x, 1, 0): %w", port, err)
		}
	}
	return nil
}
