// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package ec

import (
	"fmt"
	"runtime"
)

func openDevPort() (PortIO, error) {
	return nil, fmt.Errorf("/dev/port is not available on %s", runtime.GOOS)
}
