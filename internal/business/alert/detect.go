package alert

import (
	"fmt"
	"strings"
)

// ChangedFields 计算本次快照中变为 Done 的字段（按优先级排序）
// 判定条件：cur == Done 且与上次通知时的值不同
func ChangedFields(prev, cur FieldValues) []Field {
	changed := make([]Field, 0, FieldCount)
	for _, f := range AllFields() {
		if cur.Get(f) == StatusDone && cur.Get(f) != prev.Get(f) {
			changed = append(changed, f)
		}
	}
	return changed
}

// KeyFormat 去重 Key 的拼接格式
type KeyFormat string

const (
	// KeyFormatTagged <id>-<field>=<value>...，不同字段组合不会冲突
	KeyFormatTagged KeyFormat = "tagged"
	// KeyFormatLegacy <id>-<value>...，只拼接取值，不同字段组合可能得到相同 Key
	KeyFormatLegacy KeyFormat = "legacy"
)

// ParseKeyFormat 解析配置中的 Key 格式，空串按 tagged 处理
func ParseKeyFormat(s string) (KeyFormat, error) {
	switch KeyFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyFormatTagged:
		return KeyFormatTagged, nil
	case KeyFormatLegacy:
		return KeyFormatLegacy, nil
	default:
		return "", fmt.Errorf("unknown key format: %q", s)
	}
}

// TransitionKey 构造去重 Key（仅包含发生变化的字段）
func TransitionKey(format KeyFormat, orderID string, changed []Field, cur FieldValues) string {
	parts := make([]string, 0, len(changed)+1)
	parts = append(parts, orderID)
	for _, f := range changed {
		if format == KeyFormatLegacy {
			parts = append(parts, cur.Get(f))
			continue
		}
		parts = append(parts, f.Key()+"="+cur.Get(f))
	}
	return strings.Join(parts, "-")
}
