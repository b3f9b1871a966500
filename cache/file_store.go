package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/pagecache/types"
)

// =============================================================================
// 📁 文件后端存储
// =============================================================================

const (
	metadataFile  = "metadata.json"
	cacheFileExt  = ".json"
	backendNameFS = "file"
)

// FileStore 是 Store 的文件后端实现：内存热层 + JSON 文件持久层。
//
// 持久化布局（根目录在构造时创建）：
//   - metadata.json：位置键 → 元数据记录的扁平 JSON 对象
//   - <hex128>.json：每个位置键一个条目文件，文件名是键的
//     128 位内容哈希，内容为 索引 → 元素记录 的 JSON 对象
//
// 条目与元数据采用 写临时文件再重命名 持久化，并在键级临界区内
// 完成，外部观察者不会看到只写了一半的 元数据/条目 组合。
type FileStore struct {
	dir     string
	state   *memoryState
	keys    *keyLocks
	logger  *zap.Logger
	metrics MetricsSink
	now     func() time.Time
}

// StoreOption 配置 FileStore / RedisStore 的可选参数。
type StoreOption func(*storeOptions)

type storeOptions struct {
	metrics MetricsSink
	now     func() time.Time
}

// WithMetricsSink 注入指标接收器。
func WithMetricsSink(m MetricsSink) StoreOption {
	return func(o *storeOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// withClock 注入时钟，仅用于测试。
func withClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) { o.now = now }
}

func applyStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{metrics: NopMetrics(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewFileStore 创建文件后端存储。缓存目录不存在时自动创建，
// 随后加载既有元数据；元数据文件损坏按存储故障处理：
// 记录日志并以空元数据启动，绝不让缓存故障阻断调用方。
func NewFileStore(dir string, logger *zap.Logger, opts ...StoreOption) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := applyStoreOptions(opts)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &FileStore{
		dir:     dir,
		state:   newMemoryState(),
		keys:    newKeyLocks(),
		logger:  logger.With(zap.String("component", "file_store")),
		metrics: o.metrics,
		now:     o.now,
	}
	s.loadMetadata()
	return s, nil
}

// Read 实现 Store。内存命中直接返回；否则尝试从条目文件加载并
// 回填内存层；文件缺失或损坏降级为未命中。
func (s *FileStore) Read(ctx context.Context, location string, params map[string]string) types.ElementMap {
	key := LocationKey(location, params)

	if elems, ok := s.state.entry(key); ok {
		s.metrics.IncHit(backendNameFS)
		s.logger.Debug("memory cache hit", zap.String("key", key))
		return elems
	}

	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("read cache file failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.IncMiss(backendNameFS)
		return types.ElementMap{}
	}

	var elems types.ElementMap
	if err := json.Unmarshal(data, &elems); err != nil {
		s.logger.Error("decode cache file failed", zap.String("key", key), zap.Error(err))
		s.metrics.IncMiss(backendNameFS)
		return types.ElementMap{}
	}

	s.state.fill(key, elems)
	s.metrics.IncHit(backendNameFS)
	s.logger.Info("loaded elements from cache file",
		zap.String("key", key), zap.Int("count", len(elems)))
	return elems.Clone()
}

// Write 实现 Store。先更新内存层与元数据（版本自增），再持久化
// 条目文件与 metadata.json。持久化失败只记录日志，不回滚内存层。
func (s *FileStore) Write(ctx context.Context, location string, elements types.ElementMap, params map[string]string) {
	key := LocationKey(location, params)

	l := s.keys.lock(key)
	defer l.Unlock()

	elems := elements.Clone()
	md := s.state.put(key, location, elems, unixSeconds(s.now()))
	s.metrics.IncWrite(backendNameFS)

	// 条目先于元数据落盘：元数据是存在性的事实来源，
	// 中途崩溃最多留下一个无主条目文件，不会出现悬空元数据。
	if err := s.writeJSONAtomic(s.entryPath(key), elems); err != nil {
		s.logger.Error("persist cache entry failed", zap.String("key", key), zap.Error(err))
	}
	s.persistMetadata()

	s.logger.Info("cached elements",
		zap.String("key", key),
		zap.Int("count", md.ElementCount),
		zap.Int("version", md.Version))
}

// Info 实现 Store。
func (s *FileStore) Info(ctx context.Context, location string, params map[string]string) (types.Metadata, bool) {
	return s.state.metadata(LocationKey(location, params))
}

// Locations 实现 Store。
func (s *FileStore) Locations(ctx context.Context) []string {
	return s.state.locations()
}

// Evict 实现 Store。内存条目、元数据与条目文件一起移除；
// 条目文件缺失静默容忍。
func (s *FileStore) Evict(ctx context.Context, location string, params map[string]string) {
	key := LocationKey(location, params)

	l := s.keys.lock(key)
	defer l.Unlock()

	s.state.drop(key)
	s.persistMetadata()

	if err := os.Remove(s.entryPath(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Error("remove cache file failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.IncEvict(backendNameFS)
	s.logger.Info("evicted cache entry", zap.String("key", key))
}

// EvictAll 实现 Store。整体丢弃内存层与元数据，删除目录下全部
// JSON 缓存文件；单个文件删除失败记录日志后跳过，不致命。
func (s *FileStore) EvictAll(ctx context.Context) {
	s.state.reset()
	s.keys.reset()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("list cache dir failed", zap.Error(err))
		return
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), cacheFileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			s.logger.Error("delete cache file failed",
				zap.String("file", f.Name()), zap.Error(err))
		}
	}
	s.metrics.IncEvict(backendNameFS)
	s.logger.Info("evicted all cache entries")
}

// Close 实现 Store。文件后端没有需要释放的资源。
func (s *FileStore) Close() error { return nil }

// Dir 返回缓存根目录。
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) entryPath(key string) string {
	return filepath.Join(s.dir, keyDigest(key)+cacheFileExt)
}

func (s *FileStore) metadataPath() string {
	return filepath.Join(s.dir, metadataFile)
}

func (s *FileStore) loadMetadata() {
	data, err := os.ReadFile(s.metadataPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("load cache metadata failed", zap.Error(err))
		}
		return
	}
	meta := make(map[string]types.Metadata)
	if err := json.Unmarshal(data, &meta); err != nil {
		s.logger.Error("decode cache metadata failed", zap.Error(err))
		return
	}
	s.state.replaceMeta(meta)
	s.logger.Info("loaded cache metadata", zap.Int("entries", len(meta)))
}

func (s *FileStore) persistMetadata() {
	if err := s.writeJSONAtomic(s.metadataPath(), s.state.metaSnapshot()); err != nil {
		s.logger.Error("persist cache metadata failed", zap.Error(err))
	}
}

// writeJSONAtomic 将 v 序列化后写入同目录临时文件并重命名到 path。
func (s *FileStore) writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
