package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"netwatch/internal/models"
	"netwatch/internal/monitor"
)

// Collector exposes the current snapshot and transition counts to Prometheus.
type Collector struct {
	mon *monitor.Monitor

	up          *prometheus.Desc
	latency     *prometheus.Desc
	downloadBps *prometheus.Desc
	uploadBps   *prometheus.Desc
	transitions *prometheus.Desc
	paused      *prometheus.Desc
}

// NewCollector builds a collector over the monitor.
func NewCollector(mon *monitor.Monitor) *Collector {
	return &Collector{
		mon: mon,
		up: prometheus.NewDesc(
			"netwatch_up",
			"Whether the internet is currently reachable (1 = connected).",
			nil, nil,
		),
		latency: prometheus.NewDesc(
			"netwatch_latency_seconds",
			"Round-trip latency of the most recent successful probe.",
			nil, nil,
		),
		downloadBps: prometheus.NewDesc(
			"netwatch_download_bytes_per_second",
			"Current download rate derived from interface counters.",
			nil, nil,
		),
		uploadBps: prometheus.NewDesc(
			"netwatch_upload_bytes_per_second",
			"Current upload rate derived from interface counters.",
			nil, nil,
		),
		transitions: prometheus.NewDesc(
			"netwatch_transitions_total",
			"Connectivity transitions observed since the process started.",
			[]string{"event"}, nil,
		),
		paused: prometheus.NewDesc(
			"netwatch_paused",
			"Whether monitoring is currently paused (1 = paused).",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.latency
	ch <- c.downloadBps
	ch <- c.uploadBps
	ch <- c.transitions
	ch <- c.paused
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.mon.Status()

	up := 0.0
	if snap.State == models.StateConnected {
		up = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, float64(snap.LatencyMs)/1000)
	ch <- prometheus.MustNewConstMetric(c.downloadBps, prometheus.GaugeValue, snap.Rate.DownloadBps)
	ch <- prometheus.MustNewConstMetric(c.uploadBps, prometheus.GaugeValue, snap.Rate.UploadBps)

	pausedValue := 0.0
	if snap.Paused {
		pausedValue = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.paused, prometheus.GaugeValue, pausedValue)

	// The monitor counts transitions itself so the values stay monotonic even
	// when the history log is capped or cleared.
	connected, disconnected := c.mon.TransitionCounts()
	ch <- prometheus.MustNewConstMetric(c.transitions, prometheus.CounterValue,
		float64(connected), string(models.StateConnected))
	ch <- prometheus.MustNewConstMetric(c.transitions, prometheus.CounterValue,
		float64(disconnected), string(models.StateDisconnected))
}
