package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/pagecache/types"
)

// =============================================================================
// 🗄️ Redis 后端存储
// =============================================================================

const backendNameRedis = "redis"

// RedisConfig Redis 后端配置
type RedisConfig struct {
	// Redis 地址
	Addr string `yaml:"addr" json:"addr"`

	// 密码
	Password string `yaml:"password" json:"password"`

	// 数据库编号
	DB int `yaml:"db" json:"db"`

	// 连接池大小
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// 最小空闲连接数
	MinIdleConns int `yaml:"min_idle_conns" json:"min_idle_conns"`

	// 键命名空间前缀
	Namespace string `yaml:"namespace" json:"namespace"`
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		Namespace:    "pagecache",
	}
}

// RedisStore 是 Store 的 Redis 后端实现，面向多会话共享同一份
// 元素缓存的部署形态：本地内存作为 L1 热层，Redis 作为持久层。
//
// 键布局：
//   - <ns>:entry:<hex128>：条目 JSON（索引 → 元素记录）
//   - <ns>:meta：哈希，field 为位置键、value 为元数据 JSON
//
// 条目与元数据通过 TxPipeline 一起提交；版本号的读-改-写在
// 键级临界区内完成，同一键不会交错出半对的 元数据/条目。
// Redis 故障与文件后端同样处理：记录日志、读降级为未命中、
// 写保留内存层。
//
// L1 命中不回源校验：别的会话强制刷新后，本会话要等自己的
// L1 条目被驱逐（或进程重启）才看到新数据。与文件后端允许
// 内存与磁盘暂时分叉是同一个取舍，换取热路径零网络往返。
type RedisStore struct {
	client  *redis.Client
	cfg     RedisConfig
	state   *memoryState
	keys    *keyLocks
	logger  *zap.Logger
	metrics MetricsSink
	now     func() time.Time
}

// NewRedisStore 创建 Redis 后端存储并探活。
// Redis 不可达时返回错误，由调用方决定回退策略
// （协调器在没有可用存储时会退化为纯抓取模式）。
func NewRedisStore(cfg RedisConfig, logger *zap.Logger, opts ...StoreOption) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "pagecache"
	}
	o := applyStoreOptions(opts)

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	s := &RedisStore{
		client:  client,
		cfg:     cfg,
		state:   newMemoryState(),
		keys:    newKeyLocks(),
		logger:  logger.With(zap.String("component", "redis_store")),
		metrics: o.metrics,
		now:     o.now,
	}

	logger.Info("redis store initialized",
		zap.String("addr", cfg.Addr),
		zap.String("namespace", cfg.Namespace))
	return s, nil
}

// Read 实现 Store。L1 命中直接返回；否则读 Redis 并回填 L1；
// Redis 故障或数据损坏降级为未命中。
func (s *RedisStore) Read(ctx context.Context, location string, params map[string]string) types.ElementMap {
	key := LocationKey(location, params)

	if elems, ok := s.state.entry(key); ok {
		s.metrics.IncHit(backendNameRedis)
		s.logger.Debug("memory cache hit", zap.String("key", key))
		return elems
	}

	data, err := s.client.Get(ctx, s.entryKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("redis read failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.IncMiss(backendNameRedis)
		return types.ElementMap{}
	}

	var elems types.ElementMap
	if err := json.Unmarshal(data, &elems); err != nil {
		s.logger.Error("decode redis entry failed", zap.String("key", key), zap.Error(err))
		s.metrics.IncMiss(backendNameRedis)
		return types.ElementMap{}
	}

	s.state.fill(key, elems)
	s.metrics.IncHit(backendNameRedis)
	s.logger.Info("loaded elements from redis",
		zap.String("key", key), zap.Int("count", len(elems)))
	return elems.Clone()
}

// Write 实现 Store。版本号以 Redis 中的元数据为准（首写为 0），
// 随后条目与元数据在一个 TxPipeline 内一起提交。
// 提交失败只记录日志，内存层保留新数据。
func (s *RedisStore) Write(ctx context.Context, location string, elements types.ElementMap, params map[string]string) {
	key := LocationKey(location, params)

	l := s.keys.lock(key)
	defer l.Unlock()

	version := 0
	if md, ok := s.remoteMetadata(ctx, key); ok {
		version = md.Version + 1
	} else if md, ok := s.state.metadata(key); ok {
		// Redis 元数据不可读时退回本地已知版本，保持单调。
		version = md.Version + 1
	}

	elems := elements.Clone()
	md := types.Metadata{
		URL:          location,
		Timestamp:    unixSeconds(s.now()),
		ElementCount: len(elems),
		Version:      version,
	}
	s.state.fill(key, elems)
	s.state.setMetadata(key, md)
	s.metrics.IncWrite(backendNameRedis)

	entryJSON, err := json.Marshal(elems)
	if err != nil {
		s.logger.Error("encode cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}
	metaJSON, err := json.Marshal(md)
	if err != nil {
		s.logger.Error("encode cache metadata failed", zap.String("key", key), zap.Error(err))
		return
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.entryKey(key), entryJSON, 0)
	pipe.HSet(ctx, s.metaKey(), key, metaJSON)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("persist to redis failed", zap.String("key", key), zap.Error(err))
		return
	}

	s.logger.Info("cached elements",
		zap.String("key", key),
		zap.Int("count", md.ElementCount),
		zap.Int("version", md.Version))
}

// Info 实现 Store。优先读 Redis 元数据，失败时退回本地快照。
func (s *RedisStore) Info(ctx context.Context, location string, params map[string]string) (types.Metadata, bool) {
	key := LocationKey(location, params)
	if md, ok := s.remoteMetadata(ctx, key); ok {
		return md, true
	}
	return s.state.metadata(key)
}

// Locations 实现 Store。枚举 Redis 元数据哈希中的全部原始位置；
// Redis 故障时退回本地快照。
func (s *RedisStore) Locations(ctx context.Context) []string {
	all, err := s.client.HGetAll(ctx, s.metaKey()).Result()
	if err != nil {
		s.logger.Error("list redis metadata failed", zap.Error(err))
		return s.state.locations()
	}
	out := make([]string, 0, len(all))
	for _, raw := range all {
		var md types.Metadata
		if err := json.Unmarshal([]byte(raw), &md); err != nil {
			s.logger.Error("decode redis metadata failed", zap.Error(err))
			continue
		}
		out = append(out, md.URL)
	}
	return out
}

// Evict 实现 Store。
func (s *RedisStore) Evict(ctx context.Context, location string, params map[string]string) {
	key := LocationKey(location, params)

	l := s.keys.lock(key)
	defer l.Unlock()

	s.state.drop(key)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.entryKey(key))
	pipe.HDel(ctx, s.metaKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("redis evict failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.IncEvict(backendNameRedis)
	s.logger.Info("evicted cache entry", zap.String("key", key))
}

// EvictAll 实现 Store。内存层整体丢弃；Redis 侧通过元数据哈希
// 反推出全部条目键后一并删除，单键失败记录日志后跳过。
func (s *RedisStore) EvictAll(ctx context.Context) {
	s.state.reset()
	s.keys.reset()

	all, err := s.client.HGetAll(ctx, s.metaKey()).Result()
	if err != nil {
		s.logger.Error("list redis metadata failed", zap.Error(err))
		return
	}

	pipe := s.client.TxPipeline()
	for key := range all {
		pipe.Del(ctx, s.entryKey(key))
	}
	pipe.Del(ctx, s.metaKey())
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("redis evict all failed", zap.Error(err))
	}
	s.metrics.IncEvict(backendNameRedis)
	s.logger.Info("evicted all cache entries")
}

// Close 实现 Store。
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) entryKey(key string) string {
	return s.cfg.Namespace + ":entry:" + keyDigest(key)
}

func (s *RedisStore) metaKey() string {
	return s.cfg.Namespace + ":meta"
}

func (s *RedisStore) remoteMetadata(ctx context.Context, key string) (types.Metadata, bool) {
	raw, err := s.client.HGet(ctx, s.metaKey(), key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("read redis metadata failed", zap.String("key", key), zap.Error(err))
		}
		return types.Metadata{}, false
	}
	var md types.Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		s.logger.Error("decode redis metadata failed", zap.String("key", key), zap.Error(err))
		return types.Metadata{}, false
	}
	return md, true
}
