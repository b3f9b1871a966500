package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/pagecache/types"
)

// stubPageHandle 是带调用计数的页面句柄测试替身。
type stubPageHandle struct {
	url          string
	elements     types.ElementMap
	scrapeErr    error
	navigateErr  error
	scrapeCalls  int64
	navCalls     int64
	currentCalls int64
}

func (s *stubPageHandle) CurrentURL(ctx context.Context) (string, error) {
	atomic.AddInt64(&s.currentCalls, 1)
	return s.url, nil
}

func (s *stubPageHandle) Navigate(ctx context.Context, url string) error {
	atomic.AddInt64(&s.navCalls, 1)
	if s.navigateErr != nil {
		return s.navigateErr
	}
	s.url = url
	return nil
}

func (s *stubPageHandle) ScrapeElements(ctx context.Context) (types.ElementMap, error) {
	atomic.AddInt64(&s.scrapeCalls, 1)
	if s.scrapeErr != nil {
		return nil, s.scrapeErr
	}
	return s.elements.Clone(), nil
}

func (s *stubPageHandle) ScrapeCount() int64 {
	return atomic.LoadInt64(&s.scrapeCalls)
}

// gatedPageHandle 在放行信号之前阻塞抓取，用于并发合并测试。
type gatedPageHandle struct {
	stubPageHandle
	release chan struct{}
}

func (g *gatedPageHandle) ScrapeElements(ctx context.Context) (types.ElementMap, error) {
	<-g.release
	return g.stubPageHandle.ScrapeElements(ctx)
}

func TestManager_ConcurrentGetElementsMergeIntoOneScrape(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()

	page := &gatedPageHandle{
		stubPageHandle: stubPageHandle{url: "https://example.com", elements: threeElements()},
		release:        make(chan struct{}),
	}
	mgr := NewManager(store, page)

	const callers = 8
	var started, wg sync.WaitGroup
	started.Add(callers)
	wg.Add(callers)
	results := make([]types.ElementMap, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], errs[i] = mgr.GetElements(ctx, "https://example.com", false)
		}(i)
	}

	// 等所有调用方就位、挂在同一次飞行中的抓取上，再放行
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(page.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, threeElements(), results[i])
	}
	assert.EqualValues(t, 1, page.ScrapeCount())

	// 合并的那次抓取照常落库
	md, ok := store.Info(ctx, "https://example.com", nil)
	require.True(t, ok)
	assert.Equal(t, 0, md.Version)
}

func TestManager_CacheHitNeverScrapes(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()
	store.Write(ctx, "https://example.com", sampleElements(), nil)

	page := &stubPageHandle{url: "https://example.com", elements: threeElements()}
	mgr := NewManager(store, page, WithLogger(zap.NewNop()))

	got, err := mgr.GetElements(ctx, "https://example.com", false)
	require.NoError(t, err)
	assert.Equal(t, sampleElements(), got)
	assert.EqualValues(t, 0, page.ScrapeCount())
}

func TestManager_MissScrapesAndStores(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()

	page := &stubPageHandle{url: "https://example.com", elements: threeElements()}
	mgr := NewManager(store, page)

	got, err := mgr.GetElements(ctx, "https://example.com", false)
	require.NoError(t, err)
	assert.Equal(t, threeElements(), got)
	assert.EqualValues(t, 1, page.ScrapeCount())

	// 抓取结果已写回存储：第二次调用命中，不再抓取
	got, err = mgr.GetElements(ctx, "https://example.com", false)
	require.NoError(t, err)
	assert.Equal(t, threeElements(), got)
	assert.EqualValues(t, 1, page.ScrapeCount())

	md, ok := store.Info(ctx, "https://example.com", nil)
	require.True(t, ok)
	assert.Equal(t, 0, md.Version)
	assert.Equal(t, 3, md.ElementCount)
}

func TestManager_ForceRefreshAlwaysScrapesOnce(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()
	store.Write(ctx, "https://example.com", sampleElements(), nil)

	page := &stubPageHandle{url: "https://example.com", elements: threeElements()}
	mgr := NewManager(store, page)

	got, err := mgr.GetElements(ctx, "https://example.com", true)
	require.NoError(t, err)
	assert.Equal(t, threeElements(), got)
	assert.EqualValues(t, 1, page.ScrapeCount())

	// 强制刷新整体覆盖旧条目并推进版本
	assert.Equal(t, threeElements(), store.Read(ctx, "https://example.com", nil))
	md, ok := store.Info(ctx, "https://example.com", nil)
	require.True(t, ok)
	assert.Equal(t, 1, md.Version)
	assert.Equal(t, 3, md.ElementCount)

	_, err = mgr.GetElements(ctx, "https://example.com", true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.ScrapeCount())
}

func TestManager_EmptyScrapeResultRescrapedEveryCall(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()

	// 页面确实没有元素：空结果与未命中不可区分，每次调用都重抓
	page := &stubPageHandle{url: "https://empty.example.com", elements: types.ElementMap{}}
	mgr := NewManager(store, page)

	for i := 0; i < 3; i++ {
		got, err := mgr.GetElements(ctx, "https://empty.example.com", false)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.EqualValues(t, 3, page.ScrapeCount())
}

func TestManager_ScrapeErrorPropagates(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	boom := errors.New("page load timeout")
	page := &stubPageHandle{url: "https://example.com", scrapeErr: boom}
	mgr := NewManager(store, page)

	_, err := mgr.GetElements(context.Background(), "https://example.com", false)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrScrapeFailed))
	assert.ErrorIs(t, err, boom)

	// 失败的抓取不产生缓存条目
	_, ok := store.Info(context.Background(), "https://example.com", nil)
	assert.False(t, ok)
}

func TestManager_NilStoreFallsBackToScrapeOnly(t *testing.T) {
	t.Parallel()

	page := &stubPageHandle{url: "https://example.com", elements: sampleElements()}
	mgr := NewManager(nil, page)

	got, err := mgr.GetElements(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	assert.Equal(t, sampleElements(), got)
	assert.EqualValues(t, 1, page.ScrapeCount())
}

func TestManager_NoStoreNoHandleDegradesToEmpty(t *testing.T) {
	t.Parallel()

	mgr := NewManager(nil, nil)

	got, err := mgr.GetElements(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestManager_ElementByIndex(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()
	store.Write(ctx, "https://example.com", threeElements(), nil)

	page := &stubPageHandle{url: "https://example.com", elements: threeElements()}
	mgr := NewManager(store, page)

	el, ok, err := mgr.ElementByIndex(ctx, "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "button", el.TagName)
	assert.EqualValues(t, 0, page.ScrapeCount())

	// 缓存里没有的索引触发一次强制刷新后再查
	_, ok, err = mgr.ElementByIndex(ctx, "99")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 1, page.ScrapeCount())
}

func TestManager_ElementByIndexNoPageHandle(t *testing.T) {
	t.Parallel()

	// 没有页面句柄就无法确定当前位置，按索引查询只能报错
	mgr := NewManager(newTestFileStore(t), nil)

	_, ok, err := mgr.ElementByIndex(context.Background(), "0")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, types.IsCode(err, types.ErrNoPageHandle))
}

func TestManager_Warm(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()

	page := &stubPageHandle{elements: sampleElements()}
	mgr := NewManager(store, page)

	urls := []string{"https://a.example.com", "https://b.example.com"}
	require.NoError(t, mgr.Warm(ctx, urls))

	assert.EqualValues(t, 2, atomic.LoadInt64(&page.navCalls))
	assert.EqualValues(t, 2, page.ScrapeCount())
	assert.ElementsMatch(t, urls, mgr.Locations(ctx))
}

func TestManager_WarmNavigateError(t *testing.T) {
	t.Parallel()

	page := &stubPageHandle{navigateErr: errors.New("dns failure")}
	mgr := NewManager(newTestFileStore(t), page)

	err := mgr.Warm(context.Background(), []string{"https://a.example.com"})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNavigateFailed))
}

func TestManager_ClearAndInfoPassThrough(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()
	store.Write(ctx, "https://a.example.com", sampleElements(), nil)
	store.Write(ctx, "https://b.example.com", sampleElements(), nil)

	mgr := NewManager(store, nil)

	md, ok := mgr.Info(ctx, "https://a.example.com", nil)
	require.True(t, ok)
	assert.Equal(t, 1, md.ElementCount)

	mgr.Clear(ctx, "https://a.example.com", nil)
	_, ok = mgr.Info(ctx, "https://a.example.com", nil)
	assert.False(t, ok)

	mgr.Clear(ctx, "", nil)
	assert.Empty(t, mgr.Locations(ctx))
}

func TestManager_MaxAgeTriggersRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// 把既有条目的写入时间伪造到一小时前
	past := time.Now().Add(-time.Hour)
	store, err := NewFileStore(t.TempDir(), zap.NewNop(), withClock(func() time.Time { return past }))
	require.NoError(t, err)
	store.Write(ctx, "https://example.com", sampleElements(), nil)
	store.now = time.Now

	page := &stubPageHandle{url: "https://example.com", elements: threeElements()}
	mgr := NewManager(store, page, WithMaxAge(time.Minute))

	got, err := mgr.GetElements(ctx, "https://example.com", false)
	require.NoError(t, err)
	assert.Equal(t, threeElements(), got)
	assert.EqualValues(t, 1, page.ScrapeCount())

	// 刷新后的条目是新写入的，未过期，不再抓取
	_, err = mgr.GetElements(ctx, "https://example.com", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.ScrapeCount())
}
