// =============================================================================
// PageCache 主入口
// =============================================================================
// 元素缓存命令行工具，包含缓存预热、查询与清理
//
// 使用方法:
//
//	pagecache warm --config pagecache.yaml https://a.com https://b.com
//	pagecache list                        # 列出已缓存的位置键
//	pagecache info --url https://a.com    # 查看某个位置的元数据
//	pagecache clear                       # 清空缓存
//	pagecache clear --url https://a.com   # 清除单个位置
//	pagecache version                     # 显示版本信息
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/pagecache/browser"
	"github.com/BaSui01/pagecache/cache"
	"github.com/BaSui01/pagecache/config"
	"github.com/BaSui01/pagecache/internal/metrics"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "warm":
		runWarm(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "info":
		runInfo(os.Args[2:])
	case "clear":
		runClear(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🔥 warm 命令
// =============================================================================

func runWarm(args []string) {
	fs := flag.NewFlagSet("warm", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall warm timeout")
	fs.Parse(args)

	urls := fs.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "warm requires at least one URL")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	store := openStore(cfg, logger)
	defer store.Close()

	handle, err := browser.NewChromeHandle(cfg.BrowserDriverConfig(), logger)
	if err != nil {
		logger.Fatal("failed to start browser", zap.Error(err))
	}
	defer handle.Close()

	mgr := cache.NewManager(store, handle,
		cache.WithLogger(logger),
		cache.WithMaxAge(cfg.Cache.MaxAge),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := mgr.Warm(ctx, urls); err != nil {
		logger.Fatal("cache warm failed", zap.Error(err))
	}

	logger.Info("cache warm complete",
		zap.Int("urls", len(urls)),
		zap.Duration("elapsed", time.Since(start)))
}

// =============================================================================
// 📋 list 命令
// =============================================================================

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	store := openStore(cfg, logger)
	defer store.Close()

	locations := store.Locations(context.Background())
	if len(locations) == 0 {
		fmt.Println("cache is empty")
		return
	}
	for _, loc := range locations {
		fmt.Println(loc)
	}
}

// =============================================================================
// ℹ️ info 命令
// =============================================================================

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	url := fs.String("url", "", "Cached location to inspect")
	fs.Parse(args)

	if *url == "" {
		fmt.Fprintln(os.Stderr, "info requires --url")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	store := openStore(cfg, logger)
	defer store.Close()

	meta, ok := store.Info(context.Background(), *url, nil)
	if !ok {
		fmt.Printf("no cache entry for %s\n", *url)
		os.Exit(1)
	}

	cachedAt := time.Unix(int64(meta.Timestamp), 0).UTC()
	fmt.Printf("url:           %s\n", meta.URL)
	fmt.Printf("cached at:     %s\n", cachedAt.Format(time.RFC3339))
	fmt.Printf("element count: %d\n", meta.ElementCount)
	fmt.Printf("version:       %d\n", meta.Version)
}

// =============================================================================
// 🧹 clear 命令
// =============================================================================

func runClear(args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	url := fs.String("url", "", "Single location to evict (empty clears everything)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	store := openStore(cfg, logger)
	defer store.Close()

	ctx := context.Background()
	if *url == "" {
		store.EvictAll(ctx)
		fmt.Println("cache cleared")
		return
	}
	store.Evict(ctx, *url, nil)
	fmt.Printf("evicted %s\n", *url)
}

// =============================================================================
// 🔧 配置与存储装配
// =============================================================================

func loadConfig(path string) *config.Config {
	loader := config.NewLoader().
		WithValidator(func(c *config.Config) error { return c.Validate() })
	if path != "" {
		loader = loader.WithConfigPath(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openStore(cfg *config.Config, logger *zap.Logger) cache.Store {
	var opts []cache.StoreOption
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(cfg.Metrics.Namespace, nil, logger)
		opts = append(opts, cache.WithMetricsSink(collector))
	}

	switch cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedisStore(cfg.RedisStoreConfig(), logger, opts...)
		if err != nil {
			logger.Fatal("failed to open redis store", zap.Error(err))
		}
		return store
	default:
		store, err := cache.NewFileStore(cfg.Cache.Dir, logger, opts...)
		if err != nil {
			logger.Fatal("failed to open file store", zap.Error(err))
		}
		return store
	}
}

// =============================================================================
// 🖨️ version / usage
// =============================================================================

func printVersion() {
	fmt.Printf("PageCache %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`PageCache - element cache for browser automation

Usage:
  pagecache <command> [flags]

Commands:
  warm     Navigate a list of URLs and refresh their element caches
  list     List cached locations
  info     Show metadata for a cached location
  clear    Evict a single location or the whole cache
  version  Show version information
  help     Show this help

Examples:
  pagecache warm --config pagecache.yaml https://example.com/login
  pagecache list
  pagecache info --url https://example.com/login
  pagecache clear --url https://example.com/login
  pagecache version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	// 构建配置
	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	// 构建 logger
	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
