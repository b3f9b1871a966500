package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BaSui01/pagecache/types"
)

// =============================================================================
// 🎯 缓存协调器
// =============================================================================

// PageHandle 是协调器消费的页面句柄能力，由浏览器侧实现并在
// 构造时显式注入——协调器从不改写外部对象的形状。
// 抓取是核心中唯一可能因外部延迟（网络/页面加载）而阻塞的操作。
type PageHandle interface {
	// CurrentURL 返回当前页面地址。
	CurrentURL(ctx context.Context) (string, error)

	// Navigate 导航到指定地址并等待页面可用。
	Navigate(ctx context.Context, url string) error

	// ScrapeElements 触发一次实时 DOM 查询，可能很慢、可能失败。
	ScrapeElements(ctx context.Context) (types.ElementMap, error)
}

// Manager 是缓存协调器：决定某个位置的元素从 Store 返回还是
// 触发实时抓取，并把新抓取的结果写回 Store。
//
// 每个自动化会话持有一个 Manager 实例，存储根目录通过注入的
// Store 配置，没有环境级单例。单个请求的状态机：
// 查缓存 → 命中即返回；未命中或强制刷新 → 抓取 → 写回 → 返回。
// 请求之间不保留状态，同一页面下每次调用幂等。
type Manager struct {
	store     Store
	page      PageHandle
	group     singleflight.Group
	maxAge    time.Duration
	sessionID string
	logger    *zap.Logger
	metrics   MetricsSink
}

// ManagerOption 配置 Manager 的可选参数。
type ManagerOption func(*Manager)

// WithLogger 注入日志器。
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMaxAge 启用陈旧度策略：元数据时间戳早于 maxAge 的条目
// 视为未命中并触发刷新。0 表示关闭（缓存永不过期，原始行为）。
func WithMaxAge(maxAge time.Duration) ManagerOption {
	return func(m *Manager) { m.maxAge = maxAge }
}

// WithManagerMetrics 注入指标接收器。
func WithManagerMetrics(sink MetricsSink) ManagerOption {
	return func(m *Manager) {
		if sink != nil {
			m.metrics = sink
		}
	}
}

// NewManager 创建缓存协调器。store 或 page 允许为 nil：
// 没有存储时退化为纯抓取模式，没有页面句柄时未命中返回空映射，
// 调用方回退到非缓存的元素发现——协调器自身从不因此报错。
func NewManager(store Store, page PageHandle, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		page:      page,
		sessionID: uuid.New().String(),
		logger:    zap.NewNop(),
		metrics:   NopMetrics(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(
		zap.String("component", "cache_manager"),
		zap.String("session_id", m.sessionID))
	return m
}

// GetElements 是自动化调用方的唯一入口。
//
// forceRefresh 为 false 时先查 Store，结果非空立即返回（命中，
// 不抓取）。结果为空或 forceRefresh 为 true 时通过页面句柄实时
// 抓取，写回 Store 后返回抓取结果。
//
// 空结果与未命中不可区分：真正零元素的页面每次调用都会重抓，
// 这是沿袭下来的已知限制，不是要悄悄修掉的缺陷。
// 抓取失败原样传播——抓不到意味着调用方根本没有元素数据；
// 存储故障永远不会传播。
func (m *Manager) GetElements(ctx context.Context, location string, forceRefresh bool) (types.ElementMap, error) {
	if !forceRefresh && m.store != nil {
		elems := m.store.Read(ctx, location, nil)
		if len(elems) > 0 && !m.stale(ctx, location) {
			m.logger.Debug("cache hit",
				zap.String("url", location), zap.Int("count", len(elems)))
			return elems, nil
		}
	}

	if m.page == nil {
		m.logger.Warn("no page handle attached, returning empty element map",
			zap.String("url", location))
		return types.ElementMap{}, nil
	}

	// 同一位置的并发抓取合并为一次；单会话顺序调用不受影响。
	v, err, _ := m.group.Do(LocationKey(location, nil), func() (any, error) {
		return m.scrapeAndStore(ctx, location)
	})
	if err != nil {
		return nil, err
	}
	return v.(types.ElementMap), nil
}

// ElementByIndex 按索引返回当前页面的单个元素记录。
// 先查缓存；索引不在缓存里时强制刷新一次再查，
// 仍未找到按不存在处理（ok 为 false）。
// 没有页面句柄时无法确定当前位置，返回 ErrNoPageHandle。
func (m *Manager) ElementByIndex(ctx context.Context, index string) (types.Element, bool, error) {
	if m.page == nil {
		m.logger.Warn("no page handle attached, element lookup impossible")
		return types.Element{}, false, types.NewError(types.ErrNoPageHandle, "no page handle attached")
	}

	url, err := m.page.CurrentURL(ctx)
	if err != nil {
		return types.Element{}, false, types.NewError(types.ErrCurrentLocation, "read current url failed").WithCause(err)
	}

	elems, err := m.GetElements(ctx, url, false)
	if err != nil {
		return types.Element{}, false, err
	}
	if el, ok := elems[index]; ok {
		m.logger.Debug("element served from cache",
			zap.String("index", index), zap.String("url", url))
		return el, true, nil
	}

	// 缓存里没有该索引，页面可能已经变化，强制刷新一次。
	elems, err = m.GetElements(ctx, url, true)
	if err != nil {
		return types.Element{}, false, err
	}
	el, ok := elems[index]
	return el, ok, nil
}

// Warm 依次导航到每个地址并强制刷新其缓存，用于会话开始前的
// 缓存预热。导航或抓取失败即刻返回错误，不重试。
func (m *Manager) Warm(ctx context.Context, urls []string) error {
	if m.page == nil {
		m.logger.Warn("no page handle attached, warm skipped")
		return nil
	}
	for _, url := range urls {
		m.logger.Info("warming cache", zap.String("url", url))
		if err := m.page.Navigate(ctx, url); err != nil {
			return types.NewError(types.ErrNavigateFailed, "warm navigate failed").WithCause(err)
		}
		if _, err := m.GetElements(ctx, url, true); err != nil {
			return err
		}
	}
	return nil
}

// Clear 清除缓存。location 为空串时清除全部缓存。
func (m *Manager) Clear(ctx context.Context, location string, params map[string]string) {
	if m.store == nil {
		return
	}
	if location == "" {
		m.store.EvictAll(ctx)
		return
	}
	m.store.Evict(ctx, location, params)
}

// Info 返回某个位置的缓存元数据。
func (m *Manager) Info(ctx context.Context, location string, params map[string]string) (types.Metadata, bool) {
	if m.store == nil {
		return types.Metadata{}, false
	}
	return m.store.Info(ctx, location, params)
}

// Locations 返回全部已缓存的位置。
func (m *Manager) Locations(ctx context.Context) []string {
	if m.store == nil {
		return nil
	}
	return m.store.Locations(ctx)
}

// SessionID 返回本协调器实例的会话标识（日志关联用）。
func (m *Manager) SessionID() string { return m.sessionID }

func (m *Manager) scrapeAndStore(ctx context.Context, location string) (types.ElementMap, error) {
	start := time.Now()
	elems, err := m.page.ScrapeElements(ctx)
	m.metrics.ObserveScrape(time.Since(start), err)
	if err != nil {
		m.logger.Error("live element scrape failed",
			zap.String("url", location), zap.Error(err))
		return nil, types.NewError(types.ErrScrapeFailed, "live element scrape failed").WithCause(err)
	}

	if m.store != nil {
		m.store.Write(ctx, location, elems, nil)
	}
	m.logger.Info("scraped live elements",
		zap.String("url", location),
		zap.Int("count", len(elems)),
		zap.Duration("elapsed", time.Since(start)))
	return elems, nil
}

func (m *Manager) stale(ctx context.Context, location string) bool {
	if m.maxAge <= 0 || m.store == nil {
		return false
	}
	md, ok := m.store.Info(ctx, location, nil)
	if !ok {
		return false
	}
	age := unixSeconds(time.Now()) - md.Timestamp
	if age > m.maxAge.Seconds() {
		m.logger.Info("cache entry stale, refreshing",
			zap.String("url", location), zap.Float64("age_seconds", age))
		return true
	}
	return false
}
