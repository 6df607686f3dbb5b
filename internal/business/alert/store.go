package alert

import "context"

// FieldCache 订单 -> 上次通知时的字段值
type FieldCache interface {
	// Get 获取缓存值，不存在时 ok=false
	Get(ctx context.Context, orderID string) (values FieldValues, ok bool, err error)
	// Set 覆盖缓存值
	Set(ctx context.Context, orderID string, values FieldValues) error
}

// NotifiedSet 已通知的去重 Key 集合
type NotifiedSet interface {
	// Add 原子地检查并插入，Key 原本不存在时返回 true
	Add(ctx context.Context, key string) (bool, error)
}
