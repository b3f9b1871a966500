package cache

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/pagecache/types"
)

// =============================================================================
// 💾 缓存存储契约
// =============================================================================

// Store 是元素缓存的键值持久化契约。
//
// 缺失一律表示为空结果而非错误；存储与序列化故障在实现内部
// 记录日志并降级为未命中/空操作，永远不会传播给调用方——
// 最坏情况是被迫重新抓取（性能退化），而不是功能失败。
type Store interface {
	// Read 返回位置对应的元素映射；键不存在时返回空映射。
	Read(ctx context.Context, location string, params map[string]string) types.ElementMap

	// Write 整体覆盖该键的元素映射并同步更新元数据
	// （版本号自增、时间戳与元素数量刷新）。
	// 持久化失败只记录日志，不回滚内存层：宁可内存与磁盘
	// 暂时分叉，也不丢弃调用方刚抓到的新数据。
	Write(ctx context.Context, location string, elements types.ElementMap, params map[string]string)

	// Info 返回键的元数据；键不存在时 ok 为 false。
	Info(ctx context.Context, location string, params map[string]string) (types.Metadata, bool)

	// Locations 返回全部已缓存的原始位置字符串，顺序未定义。
	Locations(ctx context.Context) []string

	// Evict 一并移除该键的内存条目、元数据与持久化文件；
	// 持久化文件缺失时静默容忍。
	Evict(ctx context.Context, location string, params map[string]string)

	// EvictAll 整体丢弃内存层（不做选择性失效）、清空元数据
	// 并删除存储目录下的全部持久化缓存文件。
	EvictAll(ctx context.Context)

	// Close 释放底层资源。
	Close() error
}

// MetricsSink 是存储与协调器上报运行指标的最小接口。
// internal/metrics.Collector 结构性地实现了它；不需要指标时
// 使用 NopMetrics。
type MetricsSink interface {
	IncHit(backend string)
	IncMiss(backend string)
	IncWrite(backend string)
	IncEvict(backend string)
	ObserveScrape(d time.Duration, err error)
}

// NopMetrics 返回丢弃所有指标的 MetricsSink。
func NopMetrics() MetricsSink { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) IncHit(string)                      {}
func (nopMetrics) IncMiss(string)                     {}
func (nopMetrics) IncWrite(string)                    {}
func (nopMetrics) IncEvict(string)                    {}
func (nopMetrics) ObserveScrape(time.Duration, error) {}

// keyLocks 是按缓存键分段的互斥锁集合，保证同一个键的
// 元数据与条目变更在外部观察者看来是单个原子单元。
// 不相关键的读写不经过它协调。
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) lock(key string) *sync.Mutex {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l
}

func (k *keyLocks) reset() {
	k.mu.Lock()
	k.locks = make(map[string]*sync.Mutex)
	k.mu.Unlock()
}

// unixSeconds 返回 t 的 Unix 秒（含小数部分），
// 与持久化元数据的 timestamp 字段格式一致。
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
