// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"github.com/ik5/audstream/relay"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "audstream"

// StatsSource is anything that can snapshot relay counters.
type StatsSource interface {
	Stats() relay.Stats
	Deinited() bool
}

// Collector exports relay counters. It reads them at scrape time, so the
// relay's consumer path is untouched.
type Collector struct {
	src StatsSource

	queued   *prometheus.Desc
	rejected *prometheus.Desc
	served   *prometheus.Desc
	silence  *prometheus.Desc
	released *prometheus.Desc
	pending  *prometheus.Desc
	deinited *prometheus.Desc
}

// NewCollector labels every series with relay=name.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"relay": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "relay", metric), help, nil, labels)
	}

	return &Collector{
		src:      src,
		queued:   desc("queued_total", "Buffers accepted by Queue."),
		rejected: desc("rejected_total", "Queue calls refused because a buffer was pending."),
		served:   desc("served_total", "Producer buffers handed to the consumer."),
		silence:  desc("silence_total", "Silence blocks handed to the consumer."),
		released: desc("released_sequence", "Sequence number of the last released buffer."),
		pending:  desc("pending", "1 while a buffer waits in the pending slot."),
		deinited: desc("deinited", "1 once the relay has been deinitialized."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queued
	ch <- c.rejected
	ch <- c.served
	ch <- c.silence
	ch <- c.released
	ch <- c.pending
	ch <- c.deinited
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()

	ch <- prometheus.MustNewConstMetric(c.queued, prometheus.CounterValue, float64(st.Queued))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(st.Rejected))
	ch <- prometheus.MustNewConstMetric(c.served, prometheus.CounterValue, float64(st.Served))
	ch <- prometheus.MustNewConstMetric(c.silence, prometheus.CounterValue, float64(st.Silence))
	ch <- prometheus.MustNewConstMetric(c.released, prometheus.GaugeValue, float64(st.Released))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, boolValue(st.Pending))
	ch <- prometheus.MustNewConstMetric(c.deinited, prometheus.GaugeValue, boolValue(c.src.Deinited()))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
