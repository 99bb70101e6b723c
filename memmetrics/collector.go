// Copyright The MemHealth Authors
// SPDX-License-Identifier: Apache-2.0

// Package memmetrics exposes memory snapshots as Prometheus metrics.
package memmetrics // import "github.com/buildforge/memhealth/memmetrics"

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/buildforge/memhealth/osmemory"
)

// Collector samples the provider on every scrape and reports the
// reading as const gauges. Failed samples only bump the error counter.
type Collector struct {
	provider osmemory.Provider
	logger   *zap.Logger

	totalDesc     *prometheus.Desc
	availableDesc *prometheus.Desc
	scrapeErrors  prometheus.Counter
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reading from the given provider.
func NewCollector(provider osmemory.Provider, logger *zap.Logger) *Collector {
	return &Collector{
		provider: provider,
		logger:   logger,
		totalDesc: prometheus.NewDesc(
			"osmem_total_bytes",
			"Total physical memory or cgroup memory limit in bytes.",
			nil, nil),
		availableDesc: prometheus.NewDesc(
			"osmem_available_bytes",
			"Estimated memory available for new allocations in bytes.",
			nil, nil),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osmem_snapshot_errors_total",
			Help: "Number of failed memory snapshot attempts.",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalDesc
	ch <- c.availableDesc
	c.scrapeErrors.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap, err := c.provider.Snapshot()
	if err != nil {
		c.scrapeErrors.Inc()
		c.logger.Debug("Unable to sample OS memory for scrape.", zap.Error(err))
	} else {
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(snap.Total))
		ch <- prometheus.MustNewConstMetric(c.availableDesc, prometheus.GaugeValue, float64(snap.Available))
	}
	c.scrapeErrors.Collect(ch)
}
