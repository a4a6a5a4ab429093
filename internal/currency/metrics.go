package currency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "currency_refresh_runs_total",
		Help: "Rate refresh runs by scope and result",
	}, []string{"scope", "result"})

	quotesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "currency_quotes_total",
		Help: "Quotes processed by outcome (applied, skipped)",
	}, []string{"outcome"})

	quoteFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "currency_quote_fetch_duration_seconds",
		Help:    "Latency of quote service requests",
		Buckets: prometheus.DefBuckets,
	})

	registrySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "currency_registry_size",
		Help: "Number of enabled currencies in the snapshot",
	})

	registryReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "currency_registry_reloads_total",
		Help: "Number of snapshot reloads from the store",
	})
)
