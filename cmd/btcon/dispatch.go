// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/u-root/btcon/config"
	"github.com/u-root/btcon/pkg/battery"
	"github.com/u-root/btcon/pkg/hardware/ec"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "btcon [flags] command")
	fmt.Fprintln(w, "command:")
	fmt.Fprintln(w, "    f         full charge")
	fmt.Fprintln(w, "    l         limited charge")
	fmt.Fprintln(w, "    g         get current status")
	fmt.Fprintln(w, "    d         dump ec reg")
	fmt.Fprintln(w)
}

// dispatch runs the command named by the first letter of args[0]. Unknown
// or missing commands print the usage and are not an error.
func dispatch(args []string, r ec.RegisterIO, v config.Variant, out io.Writer) error {
	if len(args) == 0 || args[0] == "" {
		usage(out)
		return nil
	}
	c := battery.New(r, v, out)
	switch args[0][0] {
	case 'f':
		fmt.Fprintln(out, "set full charge")
		_, err := c.SetMode(battery.Full)
		return err
	case 'l':
		fmt.Fprintln(out, "set limited charge")
		_, err := c.SetMode(battery.Limited)
		return err
	case 'g':
		return c.PrintStatus()
	case 'd':
		return ec.Dump(r, out)
	}
	usage(out)
	return nil
}
