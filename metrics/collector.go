// Package metrics exports logger delivery statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lixenwraith/asynclog"
)

// StatsSource is satisfied by *asynclog.Logger
type StatsSource interface {
	Stats() asynclog.Stats
}

// Collector reads a fresh Stats snapshot on every scrape
type Collector struct {
	source StatsSource

	pushed       *prometheus.Desc
	drained      *prometheus.Desc
	dropped      *prometheus.Desc
	sinkPanics   *prometheus.Desc
	pending      *prometheus.Desc
	bytesWritten *prometheus.Desc
	rotations    *prometheus.Desc
	deletions    *prometheus.Desc
	writeErrors  *prometheus.Desc
	uptime       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for source. constLabels are attached to
// every metric, e.g. to tell several loggers in one process apart.
func NewCollector(source StatsSource, namespace string, constLabels prometheus.Labels) *Collector {
	if namespace == "" {
		namespace = "asynclog"
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, constLabels)
	}

	return &Collector{
		source:       source,
		pushed:       desc("records_pushed_total", "Total number of records accepted into the queue"),
		drained:      desc("records_drained_total", "Total number of records handed to the backend"),
		dropped:      desc("records_dropped_total", "Total number of records dropped because no worker was accepting"),
		sinkPanics:   desc("sink_panics_total", "Total number of recovered backend panics"),
		pending:      desc("records_pending", "Records accepted but not yet handed to the backend"),
		bytesWritten: desc("bytes_written_total", "Total bytes written by backends"),
		rotations:    desc("file_rotations_total", "Total number of log files opened by rotation"),
		deletions:    desc("file_deletions_total", "Total number of log files deleted by retention"),
		writeErrors:  desc("write_errors_total", "Total number of failed backend writes"),
		uptime:       desc("uptime_seconds", "Seconds since the logger was created"),
	}
}

// Register creates a collector for source and registers it with reg
func Register(reg prometheus.Registerer, source StatsSource, namespace string) (*Collector, error) {
	c := NewCollector(source, namespace, nil)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pushed
	ch <- c.drained
	ch <- c.dropped
	ch <- c.sinkPanics
	ch <- c.pending
	ch <- c.bytesWritten
	ch <- c.rotations
	ch <- c.deletions
	ch <- c.writeErrors
	ch <- c.uptime
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.pushed, s.Pushed)
	counter(c.drained, s.Drained)
	counter(c.dropped, s.Dropped)
	counter(c.sinkPanics, s.SinkPanics)
	counter(c.bytesWritten, s.BytesWritten)
	counter(c.rotations, s.Rotations)
	counter(c.deletions, s.Deletions)
	counter(c.writeErrors, s.WriteErrors)

	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(s.Pending))
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, s.Uptime.Seconds())
}
