package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/BaSui01/pagecache/types"
)

// =============================================================================
// 🌐 ChromeDP 页面句柄
// =============================================================================

// scrapeScript 遍历页面上的可交互节点并产出封闭的元素记录。
// 形状与 scrapedElement 一一对应。
const scrapeScript = `(() => {
	const selector = 'a[href], button, input, select, textarea, [onclick], [role="button"], [role="link"], [tabindex]';
	const xpathOf = (el) => {
		const parts = [];
		for (let node = el; node && node.nodeType === Node.ELEMENT_NODE; node = node.parentNode) {
			let idx = 1;
			for (let sib = node.previousElementSibling; sib; sib = sib.previousElementSibling) {
				if (sib.tagName === node.tagName) idx++;
			}
			parts.unshift(node.tagName.toLowerCase() + '[' + idx + ']');
		}
		return '//' + parts.join('/');
	};
	const out = [];
	for (const el of document.querySelectorAll(selector)) {
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		const visible = style.display !== 'none' && style.visibility !== 'hidden' &&
			rect.width > 0 && rect.height > 0;
		if (!visible && el.tagName !== 'INPUT') continue;
		const attrs = {};
		for (const a of el.attributes) attrs[a.name] = a.value;
		out.push({
			tag_name: el.tagName.toLowerCase(),
			xpath: xpathOf(el),
			attributes: attrs,
			text: (el.innerText || el.value || '').trim().slice(0, 200),
			is_visible: visible,
			is_in_viewport: rect.top < window.innerHeight && rect.bottom > 0 &&
				rect.left < window.innerWidth && rect.right > 0,
		});
	}
	return out;
})()`

// ChromeHandle 是 chromedp 驱动的页面句柄，实现缓存协调器消费的
// CurrentURL / Navigate / ScrapeElements 三个能力。
// 一个句柄对应一个浏览器标签页；方法内部串行化，Close 后不可再用。
type ChromeHandle struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	config      Config
	logger      *zap.Logger
	mu          sync.Mutex
	closed      bool
}

// NewChromeHandle 创建 chromedp 页面句柄并启动浏览器。
func NewChromeHandle(config Config, logger *zap.Logger) (*ChromeHandle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.WindowSize(config.ViewportWidth, config.ViewportHeight),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	if config.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(config.ProxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	h := &ChromeHandle{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		config:      config,
		logger:      logger.With(zap.String("component", "chrome_handle")),
	}

	// 启动浏览器
	if err := chromedp.Run(ctx); err != nil {
		allocCancel()
		cancel()
		return nil, types.NewError(types.ErrBrowserStart, "failed to start browser").WithCause(err)
	}

	logger.Info("chromedp browser started",
		zap.Bool("headless", config.Headless),
		zap.Int("viewport_w", config.ViewportWidth),
		zap.Int("viewport_h", config.ViewportHeight))
	return h, nil
}

// CurrentURL 返回当前页面地址。
func (h *ChromeHandle) CurrentURL(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", types.NewError(types.ErrBrowserClosed, "browser already closed")
	}

	runCtx, done := h.runCtx(ctx)
	defer done()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", types.NewError(types.ErrCurrentLocation, "failed to get URL").WithCause(err)
	}
	return url, nil
}

// Navigate 导航到指定地址并等待文档可用。
func (h *ChromeHandle) Navigate(ctx context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return types.NewError(types.ErrBrowserClosed, "browser already closed")
	}

	runCtx, done := h.runCtx(ctx)
	defer done()

	h.logger.Debug("navigating", zap.String("url", url))
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return types.NewError(types.ErrNavigateFailed, "navigate failed").WithCause(err).WithRetryable(true)
	}
	return nil
}

// ScrapeElements 触发一次实时 DOM 查询。这是核心中唯一可能因
// 外部延迟而长时间阻塞的调用；失败原样向上抛，由自动化调用方
// 决定如何收场。
func (h *ChromeHandle) ScrapeElements(ctx context.Context) (types.ElementMap, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, types.NewError(types.ErrBrowserClosed, "browser already closed")
	}

	runCtx, done := h.runCtx(ctx)
	defer done()

	start := time.Now()
	var raw []scrapedElement
	err := chromedp.Run(runCtx,
		// 先确认文档存在，避免在空白标签页上执行抓取脚本
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := dom.GetDocument().Do(ctx)
			return err
		}),
		chromedp.Evaluate(scrapeScript, &raw),
	)
	if err != nil {
		return nil, types.NewError(types.ErrScrapeFailed, "live DOM query failed").WithCause(err)
	}

	elems := convertScraped(raw)
	h.logger.Debug("scraped interactive elements",
		zap.Int("count", len(elems)),
		zap.Strings("indexes", sortedIndexes(elems)),
		zap.Duration("elapsed", time.Since(start)))
	return elems, nil
}

// Close 关闭浏览器并释放进程。
func (h *ChromeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	h.logger.Info("closing chromedp browser")
	h.cancel()
	h.allocCancel()
	return nil
}

// runCtx 把调用方的取消与配置超时叠加到浏览器上下文之上。
// 调用方已带截止时间的以调用方为准。返回的 done 必须在单次
// Run 结束后调用，释放中继 goroutine——否则长寿命句柄上的
// 每次调用都会留下一个等到 Close 才退出的 goroutine。
func (h *ChromeHandle) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeoutCancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && h.config.Timeout > 0 {
		ctx, timeoutCancel = context.WithTimeout(ctx, h.config.Timeout)
	}
	merged, cancel := context.WithCancel(h.ctx)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, func() {
		cancel()
		timeoutCancel()
	}
}
