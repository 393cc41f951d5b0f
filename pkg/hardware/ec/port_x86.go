// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64 || 386

package ec

// inb reads one byte from an I/O port. Faults unless the thread holds an
// ioperm grant for the port.
func inb(port uint16) uint8

// outb writes one byte to an I/O port.
func outb(port uint16, val uint8)
