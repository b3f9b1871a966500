// =============================================================================
// Package quick — One-Line Cache Construction
// =============================================================================
// Provides a convenience entry point for creating a fully wired element
// cache with minimal boilerplate. Delegates to cache, browser and
// internal/metrics internally.
//
// Usage:
//
//	import "github.com/BaSui01/pagecache/quick"
//
//	mgr, err := quick.New(quick.WithCacheDir("element_cache"))
//	mgr, err := quick.New(quick.WithRedis(cache.DefaultRedisConfig()))
//	mgr, err := quick.New(quick.WithPageHandle(myHandle), quick.WithCacheDir("cache"))
//
// =============================================================================
package quick

import (
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/pagecache/browser"
	"github.com/BaSui01/pagecache/cache"
	"github.com/BaSui01/pagecache/internal/metrics"
)

// Option configures the cache manager created by New.
type Option func(*options)

type options struct {
	cacheDir    string
	redisConfig *cache.RedisConfig
	page        cache.PageHandle
	browserCfg  *browser.Config
	logger      *zap.Logger
	maxAge      time.Duration
	metricsNS   string
}

// WithCacheDir selects the file backend rooted at dir.
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

// WithRedis selects the redis backend.
func WithRedis(cfg cache.RedisConfig) Option {
	return func(o *options) { o.redisConfig = &cfg }
}

// WithPageHandle sets a pre-built page handle. When absent, New starts
// a headless Chrome via the browser package.
func WithPageHandle(page cache.PageHandle) Option {
	return func(o *options) { o.page = page }
}

// WithBrowser customizes the Chrome configuration used when no page
// handle was supplied.
func WithBrowser(cfg browser.Config) Option {
	return func(o *options) { o.browserCfg = &cfg }
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxAge sets the staleness bound for cached entries.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *options) { o.maxAge = maxAge }
}

// WithMetricsNamespace enables prometheus metrics under the given
// namespace on the default registerer.
func WithMetricsNamespace(ns string) Option {
	return func(o *options) { o.metricsNS = ns }
}

// New creates a cache.Manager with minimal configuration.
// Without backend options the file backend under "element_cache" is used.
func New(opts ...Option) (*cache.Manager, error) {
	o := &options{
		cacheDir: "element_cache",
	}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var storeOpts []cache.StoreOption
	var sink cache.MetricsSink
	if o.metricsNS != "" {
		collector := metrics.NewCollector(o.metricsNS, nil, logger)
		sink = collector
		storeOpts = append(storeOpts, cache.WithMetricsSink(collector))
	}

	// Resolve store.
	var store cache.Store
	var err error
	if o.redisConfig != nil {
		store, err = cache.NewRedisStore(*o.redisConfig, logger, storeOpts...)
	} else {
		store, err = cache.NewFileStore(o.cacheDir, logger, storeOpts...)
	}
	if err != nil {
		return nil, err
	}

	// Resolve page handle.
	page := o.page
	if page == nil {
		browserCfg := browser.DefaultConfig()
		if o.browserCfg != nil {
			browserCfg = *o.browserCfg
		}
		page, err = browser.NewChromeHandle(browserCfg, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	mgrOpts := []cache.ManagerOption{
		cache.WithLogger(logger),
		cache.WithMaxAge(o.maxAge),
	}
	if sink != nil {
		mgrOpts = append(mgrOpts, cache.WithManagerMetrics(sink))
	}
	return cache.NewManager(store, page, mgrOpts...), nil
}
