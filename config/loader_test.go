// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// 验证缓存默认值
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "element_cache", cfg.Cache.Dir)
	assert.Equal(t, time.Duration(0), cfg.Cache.MaxAge)

	// 验证 Redis 默认值
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "pagecache", cfg.Redis.Namespace)

	// 验证浏览器默认值
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)

	// 验证 Log 默认值
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// 验证指标默认值
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "pagecache", cfg.Metrics.Namespace)
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	// 不指定配置文件，应该返回默认值
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, "element_cache", cfg.Cache.Dir)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	// 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
cache:
  backend: "redis"
  dir: "/var/cache/elements"
  max_age: 15m

redis:
  addr: "redis.example.com:6379"
  password: "secret"
  db: 1
  namespace: "crawler"

browser:
  headless: false
  timeout: 60s
  viewport_width: 1280
  viewport_height: 720
  user_agent: "Mozilla/5.0 test"

log:
  level: "debug"
  format: "console"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "/var/cache/elements", cfg.Cache.Dir)
	assert.Equal(t, 15*time.Minute, cfg.Cache.MaxAge)
	assert.Equal(t, "redis.example.com:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, "crawler", cfg.Redis.Namespace)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 60*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, "Mozilla/5.0 test", cfg.Browser.UserAgent)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Cache.Backend)
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("PAGECACHE_CACHE_BACKEND", "redis")
	t.Setenv("PAGECACHE_CACHE_MAX_AGE", "5m")
	t.Setenv("PAGECACHE_REDIS_ADDR", "envhost:6380")
	t.Setenv("PAGECACHE_BROWSER_HEADLESS", "false")
	t.Setenv("PAGECACHE_LOG_OUTPUT_PATHS", "stdout, /var/log/pagecache.log")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.MaxAge)
	assert.Equal(t, "envhost:6380", cfg.Redis.Addr)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"stdout", "/var/log/pagecache.log"}, cfg.Log.OutputPaths)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("cache:\n  dir: from-yaml\n"), 0o644))

	t.Setenv("PAGECACHE_CACHE_DIR", "from-env")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Cache.Dir)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_CACHE_BACKEND", "redis")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Backend)
}

func TestLoader_Validator(t *testing.T) {
	t.Setenv("PAGECACHE_CACHE_BACKEND", "carrier-pigeon")

	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

// --- Validate 测试 ---

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Cache.Backend = "redis"
	cfg.Redis.Addr = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis addr")

	cfg = DefaultConfig()
	cfg.Cache.Dir = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Cache.MaxAge = -time.Second
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Browser.ViewportWidth = 0
	require.Error(t, cfg.Validate())
}

// --- 转换辅助测试 ---

func TestRedisStoreConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redis.Addr = "example:6379"
	cfg.Redis.Namespace = "myns"

	rc := cfg.RedisStoreConfig()
	assert.Equal(t, "example:6379", rc.Addr)
	assert.Equal(t, "myns", rc.Namespace)
	assert.Equal(t, 10, rc.PoolSize)
}

func TestBrowserDriverConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser.UserAgent = "bot/1.0"

	bc := cfg.BrowserDriverConfig()
	assert.True(t, bc.Headless)
	assert.Equal(t, "bot/1.0", bc.UserAgent)
	assert.Equal(t, 30*time.Second, bc.Timeout)
}
