package types

// Element 描述页面上一个已发现的可交互元素。
// 记录一旦写入缓存即不可变；刷新会整体替换某个位置键下的全部记录。
//
// JSON 字段名即持久化的线上格式，不可随意改动。
type Element struct {
	TagName        string            `json:"tag_name"`
	XPath          string            `json:"xpath"`
	Attributes     map[string]string `json:"attributes"`
	Text           string            `json:"text,omitempty"`
	IsVisible      bool              `json:"is_visible"`
	IsInteractive  bool              `json:"is_interactive"`
	IsInViewport   bool              `json:"is_in_viewport"`
	HighlightIndex int               `json:"highlight_index"`
}

// Clone 返回元素记录的深拷贝（属性表独立）。
func (e Element) Clone() Element {
	out := e
	if e.Attributes != nil {
		out.Attributes = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// ElementMap 是一次页面抓取的完整结果，按调用方可见的索引键控。
// 索引是小整数的字符串形式（"0"、"1"……），与高亮索引一致。
type ElementMap map[string]Element

// Clone 返回映射的深拷贝。缓存条目由 Store 独占所有，
// 读写两侧都通过拷贝交换数据，调用方无法篡改缓存内部状态。
func (m ElementMap) Clone() ElementMap {
	out := make(ElementMap, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
