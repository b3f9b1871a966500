// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 缓存指标
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheWrites    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec

	// 抓取指标
	scrapesTotal   *prometheus.CounterVec
	scrapeDuration prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为 nil 时使用默认 Registerer。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 缓存指标
	c.cacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of element cache hits",
		},
		[]string{"backend"},
	)

	c.cacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of element cache misses",
		},
		[]string{"backend"},
	)

	c.cacheWrites = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Total number of element cache writes",
		},
		[]string{"backend"},
	)

	c.cacheEvictions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Total number of element cache evictions",
		},
		[]string{"backend"},
	)

	// 抓取指标
	c.scrapesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrapes_total",
			Help:      "Total number of live DOM scrapes",
		},
		[]string{"status"},
	)

	c.scrapeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Live DOM scrape duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// IncHit 记录缓存命中
func (c *Collector) IncHit(backend string) {
	c.cacheHits.WithLabelValues(backend).Inc()
}

// IncMiss 记录缓存未命中
func (c *Collector) IncMiss(backend string) {
	c.cacheMisses.WithLabelValues(backend).Inc()
}

// IncWrite 记录缓存写入
func (c *Collector) IncWrite(backend string) {
	c.cacheWrites.WithLabelValues(backend).Inc()
}

// IncEvict 记录缓存清除
func (c *Collector) IncEvict(backend string) {
	c.cacheEvictions.WithLabelValues(backend).Inc()
}

// =============================================================================
// 🌐 抓取指标记录
// =============================================================================

// ObserveScrape 记录一次实时抓取的耗时与结果
func (c *Collector) ObserveScrape(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.scrapesTotal.WithLabelValues(status).Inc()
	c.scrapeDuration.Observe(d.Seconds())
}
