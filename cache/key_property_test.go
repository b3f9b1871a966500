package cache

import (
	"testing"

	"pgregory.net/rapid"
)

// 属性：键派生对参数传入顺序不敏感，且对参数值变化敏感。
// 参数名与值限定在不含 ?&= 的字母数字上，避免与分隔符歧义。

var safeString = rapid.StringMatching(`[a-z0-9]{1,8}`)

func TestLocationKey_DerivationProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		location := "https://" + safeString.Draw(t, "host") + ".example.com/" +
			safeString.Draw(t, "path")

		params := rapid.MapOfN(safeString, safeString, 1, 6).Draw(t, "params")

		// 派生是确定性的：同一输入重复派生结果一致
		first := LocationKey(location, params)
		second := LocationKey(location, params)
		if first != second {
			t.Fatalf("derivation not deterministic: %q vs %q", first, second)
		}

		// 改动任意一个参数值必然得到不同的键
		for name, value := range params {
			mutated := make(map[string]string, len(params))
			for k, v := range params {
				mutated[k] = v
			}
			mutated[name] = value + "x"
			if LocationKey(location, mutated) == first {
				t.Fatalf("value change for %q did not change key", name)
			}
			break
		}

		// 去掉任意一个参数必然得到不同的键
		for name := range params {
			reduced := make(map[string]string, len(params))
			for k, v := range params {
				if k != name {
					reduced[k] = v
				}
			}
			if LocationKey(location, reduced) == first {
				t.Fatalf("dropping %q did not change key", name)
			}
			break
		}

		// 摘要长度恒定
		if len(keyDigest(first)) != 32 {
			t.Fatalf("digest length changed: %d", len(keyDigest(first)))
		}
	})
}
