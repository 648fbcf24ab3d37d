// Package metrics provides Prometheus metrics for newsfront.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts article collection fetches by outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsfront",
			Name:      "fetch_total",
			Help:      "Total number of news API fetches",
		},
		[]string{"outcome"},
	)

	// FetchDuration measures news API fetch duration.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newsfront",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of news API fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ViewsActive tracks views held by the registry.
	ViewsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "newsfront",
			Name:      "views_active",
			Help:      "Number of live news list views",
		},
	)

	// ArticlesServed counts articles returned by the companion API.
	ArticlesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newsapi",
			Name:      "articles_served_total",
			Help:      "Total number of articles returned by /api/news/",
		},
	)

	// IngestedTotal counts newly stored articles by source ID.
	IngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsapi",
			Name:      "ingested_total",
			Help:      "Total number of new articles stored by ingestion",
		},
		[]string{"source_id"},
	)

	// IngestErrors counts failed source fetches by source ID.
	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsapi",
			Name:      "ingest_errors_total",
			Help:      "Total number of failed source fetches",
		},
		[]string{"source_id"},
	)
)

// RecordFetch records one fetch outcome ("ok" or "failed").
func RecordFetch(outcome string, seconds float64) {
	FetchTotal.WithLabelValues(outcome).Inc()
	FetchDuration.Observe(seconds)
}
