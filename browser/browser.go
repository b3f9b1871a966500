package browser

import (
	"sort"
	"strconv"
	"time"

	"github.com/BaSui01/pagecache/types"
)

// Config 浏览器配置
type Config struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	ProxyURL       string        `yaml:"proxy_url" json:"proxy_url"`
}

// DefaultConfig 返回默认浏览器配置
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

// scrapedElement 是注入 JS 返回的单条原始记录。
type scrapedElement struct {
	TagName      string            `json:"tag_name"`
	XPath        string            `json:"xpath"`
	Attributes   map[string]string `json:"attributes"`
	Text         string            `json:"text"`
	IsVisible    bool              `json:"is_visible"`
	IsInViewport bool              `json:"is_in_viewport"`
}

// convertScraped 把 JS 侧的原始记录转换为按索引键控的元素映射。
// 高亮索引按页面文档序从 0 递增分配，索引键是它的十进制字符串。
// 只收录可交互节点，因此 is_interactive 恒为真。
func convertScraped(raw []scrapedElement) types.ElementMap {
	out := make(types.ElementMap, len(raw))
	for i, el := range raw {
		attrs := el.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		out[strconv.Itoa(i)] = types.Element{
			TagName:        el.TagName,
			XPath:          el.XPath,
			Attributes:     attrs,
			Text:           el.Text,
			IsVisible:      el.IsVisible,
			IsInteractive:  true,
			IsInViewport:   el.IsInViewport,
			HighlightIndex: i,
		}
	}
	return out
}

// sortedIndexes 返回元素映射的索引按数值序排列的切片，调试输出用。
func sortedIndexes(m types.ElementMap) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i])
		b, _ := strconv.Atoi(out[j])
		return a < b
	})
	return out
}
