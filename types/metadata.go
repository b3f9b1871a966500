package types

// Metadata 记录单个位置键的缓存簿记信息。
// 它是"该键是否存在"与"条目多旧"的唯一事实来源，
// 必须与对应的缓存条目在同一次操作中一起变更。
type Metadata struct {
	// URL 是原始位置字符串（未哈希），用于枚举所有已缓存位置。
	URL string `json:"url"`

	// Timestamp 是最近一次成功写入的时刻，Unix 秒（含小数部分）。
	Timestamp float64 `json:"timestamp"`

	// ElementCount 等于该键下当前存储的元素记录数。
	ElementCount int `json:"element_count"`

	// Version 从首次写入的 0 开始，每次成功写入递增 1。
	Version int `json:"version"`
}
