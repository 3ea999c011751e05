package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_upstream_fetches_total",
		Help: "Upstream collection fetches by collection and outcome.",
	}, []string{"collection", "outcome"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "showcase_upstream_fetch_duration_seconds",
		Help:    "Time spent serving one listing navigation.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_searches_total",
		Help: "Search executions by collection and mode.",
	}, []string{"collection", "mode"})

	StaleNavigationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showcase_stale_navigations_total",
		Help: "Navigations discarded because a newer request superseded them.",
	})

	ItemsLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "showcase_items_loaded",
		Help: "Normalized items currently held per collection and language.",
	}, []string{"collection", "lang"})
)
