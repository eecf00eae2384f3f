package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	matchesTotal       *prometheus.CounterVec
	matchDuration      *prometheus.HistogramVec
	matchConfidence    prometheus.Histogram
	cacheLookups       *prometheus.CounterVec
	candidatesScanned  prometheus.Histogram
	patternAdjustments prometheus.Counter
	merchantBoosts     prometheus.Counter
	normalizerCacheLen prometheus.Gauge
	batchSize          prometheus.Histogram
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		matchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_requests_total",
				Help: "Total number of match requests by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		matchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "match_duration_milliseconds",
				Help:    "Match duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"operation"},
		),
		matchConfidence: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "match_top_confidence",
				Help:    "Top match confidence score distribution",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_cache_lookups_total",
				Help: "Total number of match cache lookups by result",
			},
			[]string{"result"},
		),
		candidatesScanned: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "match_candidates_scanned",
				Help:    "Number of candidates scanned per match",
				Buckets: prometheus.ExponentialBuckets(1, 2, 9),
			},
		),
		patternAdjustments: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "match_pattern_confidence_adjustments_total",
				Help: "Total number of pattern confidence weight adjustments applied",
			},
		),
		merchantBoosts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "match_merchant_popularity_boosts_total",
				Help: "Total number of merchant popularity boosts applied",
			},
		),
		normalizerCacheLen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "match_normalizer_cache_entries",
				Help: "Current number of entries in the normalization cache",
			},
		),
		batchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "match_batch_size",
				Help:    "Number of texts per batch match request",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	operation := tags["operation"]

	switch name {
	case "match.completed":
		m.matchesTotal.WithLabelValues(operation, "success").Inc()
	case "match.empty":
		m.matchesTotal.WithLabelValues(operation, "empty").Inc()
	case "match.timeout":
		m.matchesTotal.WithLabelValues(operation, "timeout").Inc()
	case "match.error":
		m.matchesTotal.WithLabelValues(operation, "error").Inc()
	case "cache.hit":
		m.cacheLookups.WithLabelValues("hit").Inc()
	case "cache.miss":
		m.cacheLookups.WithLabelValues("miss").Inc()
	case "cache.failure":
		m.cacheLookups.WithLabelValues("failure").Inc()
	case "pattern.confidence_adjusted":
		m.patternAdjustments.Inc()
	case "merchant.popularity_boosted":
		m.merchantBoosts.Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "match", "match_pattern", "match_merchant", "batch_match", "similarity":
		m.matchDuration.WithLabelValues(name).Observe(float64(duration.Microseconds()) / 1000)
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "match.top_confidence":
		m.matchConfidence.Observe(value)
	case "match.candidates_scanned":
		m.candidatesScanned.Observe(value)
	case "match.batch_size":
		m.batchSize.Observe(value)
	case "normalizer.cache_entries":
		m.normalizerCacheLen.Set(value)
	}
}
