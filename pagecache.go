// Package pagecache provides a top-level convenience entry point for
// creating a wired element cache with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/pagecache"
//
//	mgr, err := pagecache.New(pagecache.WithCacheDir("element_cache"))
//	mgr, err := pagecache.New(pagecache.WithRedis(cache.DefaultRedisConfig()))
//	mgr, err := pagecache.New(pagecache.WithPageHandle(myHandle))
//
// This is a thin wrapper around [quick.New]; both produce identical results.
// Use this package when you prefer the shorter import path.
package pagecache

import (
	"github.com/BaSui01/pagecache/cache"
	"github.com/BaSui01/pagecache/quick"
)

// Option configures the cache manager created by [New].
type Option = quick.Option

// New creates a [cache.Manager] with minimal configuration. Without
// backend options the file backend under "element_cache" is used, and a
// headless Chrome is started unless [WithPageHandle] supplies a handle.
func New(opts ...Option) (*cache.Manager, error) {
	return quick.New(opts...)
}

// Re-export wiring shortcuts so callers never need to import quick/.

// WithCacheDir selects the file backend rooted at dir.
var WithCacheDir = quick.WithCacheDir

// WithRedis selects the redis backend.
var WithRedis = quick.WithRedis

// WithPageHandle sets a pre-built page handle.
var WithPageHandle = quick.WithPageHandle

// WithBrowser customizes the Chrome configuration.
var WithBrowser = quick.WithBrowser

// WithLogger sets a custom zap logger.
var WithLogger = quick.WithLogger

// WithMaxAge sets the staleness bound for cached entries.
var WithMaxAge = quick.WithMaxAge

// WithMetricsNamespace enables prometheus metrics under the namespace.
var WithMetricsNamespace = quick.WithMetricsNamespace
