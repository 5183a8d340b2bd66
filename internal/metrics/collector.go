package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheEntriesDesc = prometheus.NewDesc(
		namespace+"_cache_entries",
		"Entries currently held by the response cache, expired ones included",
		nil,
		nil,
	)
	cacheBytesDesc = prometheus.NewDesc(
		namespace+"_cache_bytes",
		"Estimated serialized size of the response cache",
		nil,
		nil,
	)
)

// CacheStats reports the current cache occupancy
type CacheStats interface {
	Len() int
	Bytes() int64
}

// CacheCollector is a custom Prometheus collector that reads cache occupancy on each scrape
type CacheCollector struct {
	stats CacheStats
}

// NewCacheCollector creates a collector over the given cache
func NewCacheCollector(stats CacheStats) *CacheCollector {
	return &CacheCollector{stats: stats}
}

// Describe sends the metric descriptors to the channel.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheEntriesDesc
	ch <- cacheBytesDesc
}

// Collect emits the current entry count and size as gauges.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(c.stats.Len()))
	ch <- prometheus.MustNewConstMetric(cacheBytesDesc, prometheus.GaugeValue, float64(c.stats.Bytes()))
}
