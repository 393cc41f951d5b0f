// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux || !(amd64 || 386)

package ec

import (
	"fmt"
	"runtime"
)

func openMemio() (PortIO, error) {
	return nil, fmt.Errorf("memio port access is not available on %s/%s", runtime.GOOS, runtime.GOARCH)
}
