// Package arenaprom exports arena metrics to Prometheus.
package arenaprom

import (
	"github.com/prometheus/client_golang/prometheus"

	arena "github.com/pavanmanishd/bumparena"
)

const namespace = "bumparena"

// Source is anything that can snapshot arena metrics. Both arena.Arena and
// arena.ConcurrentArena satisfy it; only the latter may be scraped while
// other goroutines allocate.
type Source interface {
	Metrics() arena.Metrics
}

// Collector is a prometheus.Collector reading one arena on every scrape.
type Collector struct {
	src Source

	inUse       *prometheus.Desc
	capacity    *prometheus.Desc
	peak        *prometheus.Desc
	epoch       *prometheus.Desc
	allocations *prometheus.Desc
	failures    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector labelling every series with arena=name.
func NewCollector(name string, src Source) *Collector {
	labels := prometheus.Labels{"arena": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, labels)
	}
	return &Collector{
		src:         src,
		inUse:       desc("bytes_in_use", "Bytes handed out since the last reset, including alignment padding."),
		capacity:    desc("capacity_bytes", "Size of the arena buffer."),
		peak:        desc("peak_bytes", "Highest cursor position reached over the arena's lifetime."),
		epoch:       desc("epoch", "Current reset epoch."),
		allocations: desc("allocations", "Successful allocations in the current epoch."),
		failures:    desc("failures_total", "Allocations rejected for lack of capacity."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inUse
	ch <- c.capacity
	ch <- c.peak
	ch <- c.epoch
	ch <- c.allocations
	ch <- c.failures
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(m.Len))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(m.Cap))
	ch <- prometheus.MustNewConstMetric(c.peak, prometheus.GaugeValue, float64(m.Peak))
	ch <- prometheus.MustNewConstMetric(c.epoch, prometheus.GaugeValue, float64(m.Epoch))
	ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.GaugeValue, float64(m.Allocations))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(m.Failures))
}
