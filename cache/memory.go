package cache

import (
	"sync"

	"github.com/BaSui01/pagecache/types"
)

// memoryState 是缓存的内存热层：缓存之上的缓存。
// 读取时按需从持久层回填，EvictAll 时整体丢弃而非逐键失效。
// FileStore 与 RedisStore 共用这一实现。
type memoryState struct {
	mu      sync.RWMutex
	entries map[string]types.ElementMap
	meta    map[string]types.Metadata
}

func newMemoryState() *memoryState {
	return &memoryState{
		entries: make(map[string]types.ElementMap),
		meta:    make(map[string]types.Metadata),
	}
}

// entry 返回键对应的内存条目拷贝。
func (m *memoryState) entry(key string) (types.ElementMap, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	elems, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return elems.Clone(), true
}

// fill 从持久层回填一个条目（不触碰元数据）。
func (m *memoryState) fill(key string, elems types.ElementMap) {
	m.mu.Lock()
	m.entries[key] = elems
	m.mu.Unlock()
}

// put 在同一个临界区内更新条目与元数据，并返回新的版本号。
// 版本号从首次写入的 0 开始，每次写入递增 1。
func (m *memoryState) put(key, location string, elems types.ElementMap, seconds float64) types.Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()

	version := 0
	if prev, ok := m.meta[key]; ok {
		version = prev.Version + 1
	}
	md := types.Metadata{
		URL:          location,
		Timestamp:    seconds,
		ElementCount: len(elems),
		Version:      version,
	}
	m.entries[key] = elems
	m.meta[key] = md
	return md
}

func (m *memoryState) metadata(key string) (types.Metadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.meta[key]
	return md, ok
}

func (m *memoryState) setMetadata(key string, md types.Metadata) {
	m.mu.Lock()
	m.meta[key] = md
	m.mu.Unlock()
}

// locations 返回元数据中的全部原始位置字符串，顺序未定义。
func (m *memoryState) locations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.meta))
	for _, md := range m.meta {
		out = append(out, md.URL)
	}
	return out
}

// drop 在同一个临界区内移除条目与元数据。
func (m *memoryState) drop(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	delete(m.meta, key)
	m.mu.Unlock()
}

// reset 整体丢弃全部内存状态。
func (m *memoryState) reset() {
	m.mu.Lock()
	m.entries = make(map[string]types.ElementMap)
	m.meta = make(map[string]types.Metadata)
	m.mu.Unlock()
}

// metaSnapshot 返回元数据映射的浅拷贝，用于持久化。
func (m *memoryState) metaSnapshot() map[string]types.Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]types.Metadata, len(m.meta))
	for k, v := range m.meta {
		out[k] = v
	}
	return out
}

// replaceMeta 用持久层加载的元数据整体替换内存元数据。
func (m *memoryState) replaceMeta(meta map[string]types.Metadata) {
	m.mu.Lock()
	m.meta = meta
	m.mu.Unlock()
}
