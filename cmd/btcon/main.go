// Copyright 2018-2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// btcon toggles the battery charge limit kept by the embedded controller.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/u-root/btcon/config"
	"github.com/u-root/btcon/pkg/hardware/ec"
	"github.com/u-root/btcon/pkg/logger"
)

var (
	configFile  = flag.String("config", "", "JSON file overlaying the built-in configuration")
	variant     = flag.String("variant", "", "Battery register variant, overrides the configuration")
	backend     = flag.String("backend", "", "Port backend (ioperm, devport or memio), overrides the configuration")
	logFile     = flag.String("log_file", "", "Also write JSON logs to this file")
	debug       = flag.Bool("debug", false, "Log every EC register access")
	printStats  = flag.Bool("print_ec_stats", false, "At the end of the run, print EC handshake statistics")
	metricsFile = flag.String("metrics_file", "", "Write EC handshake metrics in Prometheus text format to this file")

	log = logger.LogContainer.GetSimpleLogger()
)

func main() {
	flag.Usage = func() {
		usage(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output(), "flags:")
		flag.PrintDefaults()
	}
	flag.Parse()
	defer logger.LogContainer.Sync()

	c, err := config.LoadFile(*configFile)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	if *variant != "" {
		c.Variant = *variant
	}
	if *backend != "" {
		c.Backend = *backend
	}
	if *logFile != "" {
		c.LogFile = *logFile
	}
	if c.LogFile != "" {
		if err := logger.LogContainer.AddFile(c.LogFile); err != nil {
			log.Fatalf("%v", err)
		}
		log = logger.LogContainer.GetSimpleLogger()
	}
	logger.LogContainer.SetDebug(*debug)

	if err := c.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	v, err := c.SelectedVariant()
	if err != nil {
		log.Fatalf("%v", err)
	}

	reg := prometheus.NewRegistry()
	m := ec.NewMetrics(reg)
	e, err := ec.Open(c, ec.WithMetrics(m))
	if err != nil {
		if errors.Is(err, ec.ErrPermission) {
			log.Fatalf("Cannot access EC ports (backend %s), are you root? %v", c.Backend, err)
		}
		log.Fatalf("Opening EC: %v", err)
	}

	err = dispatch(flag.Args(), e, v, os.Stdout)

	if *printStats {
		if err := m.Print(os.Stdout); err != nil {
			log.Errorf("Printing EC stats: %v", err)
		}
	}
	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, reg); err != nil {
			log.Errorf("Writing metrics: %v", err)
		}
	}
	if cerr := e.Close(); cerr != nil {
		log.Warnf("Releasing EC ports: %v", cerr)
	}

	if err != nil {
		if errors.Is(err, ec.ErrTimeout) {
			log.Fatalf("EC is not responding: %v", err)
		}
		log.Fatalf("%v", err)
	}
}
