// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("EC handshake timed out")
	// ErrPermission matches every *PermissionError.
	ErrPermission = errors.New("EC port access denied")
)

// TimeoutError reports a status bit that never reached the expected value.
// The EC is wedged or absent, retrying the operation will not help.
type TimeoutError struct {
	Port     uint16
	Last     uint8
	Bit      uint
	Want     uint8
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("wait_ec error on port %#x, data=%#x, flag=%#x, value=%#x after %d polls",
		e.Port, e.Last, e.Bit, e.Want, e.Attempts)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// PermissionError is returned when the port backend cannot be acquired.
type PermissionError struct {
	Op  string
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermission
}

// exhausted reports whether attempt polls use up the budget.
func exhausted(attempt, budget int) bool {
	return attempt >= budget
}

// wait polls port until bit equals want. It sleeps the poll interval
// between reads, not after the last one.
func (e *EC) wait(port uint16, bit uint, want uint8) error {
	start := e.clk.Now()
	var data uint8
	attempt := 0
	for {
		var err error
		data, err = e.in(port)
		if err != nil {
			return err
		}
		attempt++
		if (data>>bit)&1 == want {
			e.metrics.observeWait(e.clk.Now().Sub(start), attempt)
			return nil
		}
		if exhausted(attempt, e.poll.Attempts) {
			break
		}
		e.clk.Sleep(e.poll.Interval())
	}
	e.metrics.timeout()
	return &TimeoutError{Port: port, Last: data, Bit: bit, Want: want, Attempts: attempt}
}
