package store

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Read cache Prometheus metrics. All metrics carry a "store" label whose value
// is the Group set in ProviderConfig.
var (
	// HitsTotal counts reads answered by the read cache.
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_cache_hits_total",
			Help: "Total number of store reads served from the read cache.",
		},
		[]string{"store"},
	)

	// MissesTotal counts reads that fell through to the backend.
	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_cache_misses_total",
			Help: "Total number of store reads that missed the read cache.",
		},
		[]string{"store"},
	)

	// EvictionsTotal counts entries dropped from the read cache.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_cache_evictions_total",
			Help: "Total number of entries evicted from the read cache.",
		},
		[]string{"store"},
	)

	// ErrorsTotal counts swallowed settings read/write failures per operation.
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of store operations that failed.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		EvictionsTotal,
		ErrorsTotal,
	)
}

// cacheEntriesCollector lazily reports the read cache size at scrape time.
type cacheEntriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *cacheEntriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *cacheEntriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesCollectorMu sync.Mutex
	entriesCollectors  = make(map[string]*cacheEntriesCollector)
	// entriesReg is exposed as a variable so tests can substitute an isolated registry.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector registers a per-group entries collector. An existing
// collector for the same group is replaced.
func registerEntriesCollector(group string, lenFunc func() int) *cacheEntriesCollector {
	desc := prometheus.NewDesc(
		"store_cache_entries",
		"Current number of entries in the store read cache.",
		nil,
		prometheus.Labels{"store": group},
	)
	c := &cacheEntriesCollector{desc: desc, lenFunc: lenFunc}

	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if old, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[group] = c
	_ = entriesReg.Register(c)
	return c
}

// unregisterEntriesCollector removes the entries collector for the given group.
func unregisterEntriesCollector(group string) {
	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if c, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, group)
	}
}
