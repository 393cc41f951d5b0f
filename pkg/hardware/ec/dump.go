// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"fmt"
	"io"
)

// Reader reads one EC register.
type Reader interface {
	Read(reg uint8) (uint8, error)
}

const rowSize = 16

// registerRows is the whole 256 byte EC register space, 16 registers per row.
type registerRows [256 / rowSize][rowSize]uint8

// dumpRows reads every register from 0x00 to 0xff in order.
func dumpRows(r Reader) (*registerRows, error) {
	var rows registerRows
	err := visit(r, func(reg, v uint8) error {
		rows[reg/rowSize][reg%rowSize] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rows, nil
}

// Dump prints every register as a hex grid. Rows are written as they are
// read, so a failing EC leaves the partial dump on w.
func Dump(r Reader, w io.Writer) error {
	fmt.Fprint(w, "EC reg dump:")
	err := visit(r, func(reg, v uint8) error {
		if reg%rowSize == 0 {
			if _, err := fmt.Fprintf(w, "\n 0x%02x: ", reg); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%02x ", v)
		return err
	})
	if err != nil {
		fmt.Fprintln(w)
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func visit(r Reader, f func(reg, v uint8) error) error {
	for i := 0; i <= 0xff; i++ {
		v, err := r.Read(uint8(i))
		if err != nil {
			return err
		}
		if err := f(uint8(i), v); err != nil {
			return err
		}
	}
	return nil
}
