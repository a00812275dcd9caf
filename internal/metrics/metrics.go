package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Download metrics
var (
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloads_total",
			Help: "Total number of finished downloader runs.",
		},
		[]string{"downloader", "status"},
	)

	DownloadsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "downloads_active",
			Help: "Number of downloader processes currently running.",
		},
	)

	DownloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "download_duration_seconds",
			Help:    "Wall time of downloader runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"downloader"},
	)
)

// IPC bridge metrics
var (
	IPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipc_requests_total",
			Help: "Total number of IPC requests by channel and response code.",
		},
		[]string{"channel", "code"},
	)

	IPCEventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipc_events_dropped_total",
			Help: "Total number of events not delivered to a slow subscriber.",
		},
		[]string{"channel"},
	)

	IPCSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ipc_subscribers",
			Help: "Number of connected event subscribers.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		DownloadsTotal,
		DownloadsActive,
		DownloadDuration,
		IPCRequestsTotal,
		IPCEventsDropped,
		IPCSubscribers,
	)
}
