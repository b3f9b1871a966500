package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Headless)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1920, cfg.ViewportWidth)
	assert.Equal(t, 1080, cfg.ViewportHeight)
	assert.Empty(t, cfg.UserAgent)
	assert.Empty(t, cfg.ProxyURL)
}

func TestConvertScraped(t *testing.T) {
	raw := []scrapedElement{
		{
			TagName:      "button",
			XPath:        "//html[1]/body[1]/button[1]",
			Attributes:   map[string]string{"id": "submit", "type": "submit"},
			Text:         "登录",
			IsVisible:    true,
			IsInViewport: true,
		},
		{
			TagName:      "a",
			XPath:        "//html[1]/body[1]/a[1]",
			Attributes:   nil,
			Text:         "帮助",
			IsVisible:    true,
			IsInViewport: false,
		},
	}

	elems := convertScraped(raw)
	require.Len(t, elems, 2)

	btn, ok := elems["0"]
	require.True(t, ok)
	assert.Equal(t, "button", btn.TagName)
	assert.Equal(t, "//html[1]/body[1]/button[1]", btn.XPath)
	assert.Equal(t, "submit", btn.Attributes["id"])
	assert.Equal(t, "登录", btn.Text)
	assert.True(t, btn.IsVisible)
	assert.True(t, btn.IsInteractive)
	assert.True(t, btn.IsInViewport)
	assert.Equal(t, 0, btn.HighlightIndex)

	link, ok := elems["1"]
	require.True(t, ok)
	assert.Equal(t, 1, link.HighlightIndex)
	assert.False(t, link.IsInViewport)
	// nil 属性表归一化为空映射，下游不需要判空
	require.NotNil(t, link.Attributes)
	assert.Empty(t, link.Attributes)
}

func TestConvertScrapedEmpty(t *testing.T) {
	elems := convertScraped(nil)
	require.NotNil(t, elems)
	assert.Empty(t, elems)
}

func TestSortedIndexes(t *testing.T) {
	raw := make([]scrapedElement, 12)
	for i := range raw {
		raw[i] = scrapedElement{TagName: "a", IsVisible: true}
	}
	idx := sortedIndexes(convertScraped(raw))

	require.Len(t, idx, 12)
	// 数值序而非字典序："2" 在 "10" 之前
	assert.Equal(t, "2", idx[2])
	assert.Equal(t, "10", idx[10])
	assert.Equal(t, "11", idx[11])
}
