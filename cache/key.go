package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// LocationKey 根据基础位置与可选的消歧参数生成缓存键。
// 参数名按字典序排序后以 name=value 拼接并用 & 连接，
// 保证同一参数集合无论调用方传入顺序如何都映射到同一个键。
func LocationKey(location string, params map[string]string) string {
	if len(params) == 0 {
		return location
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	return location + "?" + strings.Join(pairs, "&")
}

// keyDigest 返回缓存键的 128 位内容哈希十六进制串（sha256 截断 16 字节），
// 用作持久化文件名/Redis 键后缀。摘要到原始键的反向映射不需要，
// 原始位置字符串保留在元数据里供枚举。
func keyDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}
