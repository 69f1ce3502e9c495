package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayStats provides the metrics collector access to relay state.
type RelayStats interface {
	InFlight() int64
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	stats    RelayStats
	provider string
	model    string
	keySet   bool

	inFlight     *prometheus.Desc
	providerInfo *prometheus.Desc
}

// NewCollector creates a collector that reads live state at scrape time.
// stats may be nil (in-flight reports 0).
func NewCollector(stats RelayStats, provider, model string, keyConfigured bool) *Collector {
	return &Collector{
		stats:    stats,
		provider: provider,
		model:    model,
		keySet:   keyConfigured,
		inFlight: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "transcriptions_in_flight"),
			"Transcription requests currently waiting on the provider.",
			nil, nil,
		),
		providerInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "provider_info"),
			"Active transcription provider; always 1.",
			[]string{"provider", "model", "api_key_configured"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inFlight
	ch <- c.providerInfo
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var inFlight float64
	if c.stats != nil {
		inFlight = float64(c.stats.InFlight())
	}
	ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, inFlight)
	ch <- prometheus.MustNewConstMetric(c.providerInfo, prometheus.GaugeValue, 1,
		c.provider, c.model, strconv.FormatBool(c.keySet))
}
