// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package observability provides Prometheus metrics for install runs.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Metrics contains the install metrics. A nil *Metrics records nothing.
type Metrics struct {
	PluginsTotal  *prometheus.CounterVec
	BytesWritten  prometheus.Counter
	FetchDuration *prometheus.HistogramVec
	IndexEntries  prometheus.Gauge
}

// NewMetrics creates and registers the install metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PluginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drillbit_plugins_total",
				Help: "Total number of plugins processed by source kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		BytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "drillbit_bytes_written_total",
				Help: "Total number of plugin bytes written to the plugins directory",
			},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drillbit_fetch_duration_seconds",
				Help:    "Time spent downloading plugin content by source kind",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
			},
			[]string{"kind"},
		),
		IndexEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "drillbit_index_entries",
				Help: "Number of distinct content hashes in the plugins directory",
			},
		),
	}

	reg.MustRegister(m.PluginsTotal)
	reg.MustRegister(m.BytesWritten)
	reg.MustRegister(m.FetchDuration)
	reg.MustRegister(m.IndexEntries)

	return m
}

// RecordOutcome counts a processed plugin. written is added to the byte
// counter and should be zero for anything that was not written.
func (m *Metrics) RecordOutcome(kind, outcome string, written int) {
	if m == nil {
		return
	}
	m.PluginsTotal.WithLabelValues(kind, outcome).Inc()
	if written > 0 {
		m.BytesWritten.Add(float64(written))
	}
}

// ObserveFetch records how long a download took.
func (m *Metrics) ObserveFetch(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// SetIndexEntries reports the current size of the dedup index.
func (m *Metrics) SetIndexEntries(n int) {
	if m == nil {
		return
	}
	m.IndexEntries.Set(float64(n))
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return oops.Code("IO_WRITE_FAILED").With("path", path).Wrapf(err, "write metrics textfile")
	}
	return nil
}
