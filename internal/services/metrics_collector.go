package services

import (
	"math"
	"sort"
	"sync"
	"time"
)

// metricsWindowSize bounds the per-operation rolling window; the oldest
// sample is dropped when a new one arrives at capacity.
const metricsWindowSize = 1000

// OperationMetrics summarizes one operation's rolling window. Times are in
// milliseconds.
type OperationMetrics struct {
	Count int64   `json:"count"`
	AvgMS float64 `json:"avg_ms"`
	MinMS float64 `json:"min_ms"`
	MaxMS float64 `json:"max_ms"`
	P95MS float64 `json:"p95_ms"`
	P99MS float64 `json:"p99_ms"`
}

type MetricsSummary struct {
	Operations   map[string]OperationMetrics `json:"operations"`
	CacheHits    int64                       `json:"cache_hits"`
	CacheMisses  int64                       `json:"cache_misses"`
	CacheHitRate float64                     `json:"cache_hit_rate"`
}

// MetricsCollector keeps in-process timing windows and cache counters for the
// matcher. It complements, not replaces, the Prometheus recorder: these
// numbers feed the admin metrics endpoint and health checks directly.
type MetricsCollector struct {
	mu          sync.Mutex
	windows     map[string][]float64
	totalCounts map[string]int64
	cacheHits   int64
	cacheMisses int64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		windows:     make(map[string][]float64),
		totalCounts: make(map[string]int64),
	}
}

func (c *MetricsCollector) RecordDuration(operation string, duration time.Duration) {
	ms := float64(duration.Microseconds()) / 1000

	c.mu.Lock()
	defer c.mu.Unlock()

	window := c.windows[operation]
	if len(window) >= metricsWindowSize {
		window = window[1:]
	}
	c.windows[operation] = append(window, ms)
	c.totalCounts[operation]++
}

func (c *MetricsCollector) RecordCacheHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheHits++
}

func (c *MetricsCollector) RecordCacheMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheMisses++
}

func (c *MetricsCollector) Summary() MetricsSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := MetricsSummary{
		Operations:  make(map[string]OperationMetrics, len(c.windows)),
		CacheHits:   c.cacheHits,
		CacheMisses: c.cacheMisses,
	}

	for operation, window := range c.windows {
		if len(window) == 0 {
			continue
		}
		summary.Operations[operation] = summarizeWindow(c.totalCounts[operation], window)
	}

	if total := c.cacheHits + c.cacheMisses; total > 0 {
		summary.CacheHitRate = float64(c.cacheHits) / float64(total)
	}

	return summary
}

func (c *MetricsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows = make(map[string][]float64)
	c.totalCounts = make(map[string]int64)
	c.cacheHits = 0
	c.cacheMisses = 0
}

func summarizeWindow(total int64, window []float64) OperationMetrics {
	sorted := make([]float64, len(window))
	copy(sorted, window)
	sort.Float64s(sorted)

	var sum float64
	for _, ms := range window {
		sum += ms
	}

	return OperationMetrics{
		Count: total,
		AvgMS: sum / float64(len(window)),
		MinMS: sorted[0],
		MaxMS: sorted[len(sorted)-1],
		P95MS: percentile(sorted, 0.95),
		P99MS: percentile(sorted, 0.99),
	}
}

// percentile expects a sorted slice and uses the nearest-rank method.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
