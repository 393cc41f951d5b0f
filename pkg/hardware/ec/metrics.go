// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics counts handshake activity. A nil *Metrics records nothing.
type Metrics struct {
	portOps  *prometheus.CounterVec
	waitTime prometheus.Histogram
	polls    prometheus.Counter
	timeouts prometheus.Counter
	g        prometheus.Gatherer
}

// Registry is where the collectors live. *prometheus.Registry satisfies it.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg Registry) *Metrics {
	m := &Metrics{
		g: reg,
		portOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "btcon",
			Subsystem: "ec",
			Name:      "port_operations_total",
			Help:      "Bytes moved over the EC ports.",
		}, []string{"port", "direction"}),
		waitTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "btcon",
			Subsystem: "ec",
			Name:      "wait_seconds",
			Help:      "Time spent polling the EC status port for a successful wait.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "btcon",
			Subsystem: "ec",
			Name:      "status_polls_total",
			Help:      "Status port reads done by successful waits.",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "btcon",
			Subsystem: "ec",
			Name:      "wait_timeouts_total",
			Help:      "Waits that exhausted the poll budget.",
		}),
	}
	reg.MustRegister(m.portOps, m.waitTime, m.polls, m.timeouts)
	return m
}

func (m *Metrics) portOp(port uint16, dir string) {
	if m == nil {
		return
	}
	m.portOps.WithLabelValues(fmt.Sprintf("%#x", port), dir).Inc()
}

func (m *Metrics) observeWait(d time.Duration, polls int) {
	if m == nil {
		return
	}
	m.waitTime.Observe(d.Seconds())
	m.polls.Add(float64(polls))
}

func (m *Metrics) timeout() {
	if m == nil {
		return
	}
	m.timeouts.Inc()
}

// Print writes a one line summary of the handshake counters. Values come
// from the registry, so printing does not create empty series.
func (m *Metrics) Print(w io.Writer) error {
	if m == nil {
		return nil
	}
	mfs, err := m.g.Gather()
	if err != nil {
		return fmt.Errorf("gathering EC metrics: %w", err)
	}
	var in, out, polls, timeouts float64
	var h *dto.Histogram
	for _, mf := range mfs {
		for _, pb := range mf.GetMetric() {
			switch mf.GetName() {
			case "btcon_ec_port_operations_total":
				for _, l := range pb.GetLabel() {
					if l.GetName() != "direction" {
						continue
					}
					if l.GetValue() == "in" {
						in += pb.GetCounter().GetValue()
					} else {
						out += pb.GetCounter().GetValue()
					}
				}
			case "btcon_ec_wait_seconds":
				h = pb.GetHistogram()
			case "btcon_ec_status_polls_total":
				polls = pb.GetCounter().GetValue()
			case "btcon_ec_wait_timeouts_total":
				timeouts = pb.GetCounter().GetValue()
			}
		}
	}
	_, err = fmt.Fprintf(w, "EC stats: %v INs, %v OUTs, %v waits (time %v, %v polls), %v timeouts\n",
		in, out, h.GetSampleCount(),
		time.Duration(h.GetSampleSum()*float64(time.Second)),
		polls, timeouts)
	return err
}
