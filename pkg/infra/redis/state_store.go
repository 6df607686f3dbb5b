package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"oip/dpnotify/internal/business/alert"
)

// StateStore 基于 Redis 的去重状态，进程重启后保留
//   - 去重 Key：<prefix>:notified:<key>，SET NX + TTL
//   - 字段缓存：<prefix>:fields:<orderID>，Hash + TTL
type StateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration // 0 表示不过期
}

// NewStateStore 创建 Redis 状态存储
func NewStateStore(client *redis.Client, prefix string, ttl time.Duration) *StateStore {
	if prefix == "" {
		prefix = "dpnotify"
	}
	return &StateStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *StateStore) notifiedKey(key string) string {
	return s.prefix + ":notified:" + key
}

func (s *StateStore) fieldsKey(orderID string) string {
	return s.prefix + ":fields:" + orderID
}

// Add 实现 alert.NotifiedSet
func (s *StateStore) Add(ctx context.Context, key string) (bool, error) {
	added, err := s.client.SetNX(ctx, s.notifiedKey(key), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return added, nil
}

// Contains 实现 alert.NotifiedSet
func (s *StateStore) Contains(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.notifiedKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Get 实现 alert.FieldCache
func (s *StateStore) Get(ctx context.Context, orderID string) (alert.FieldValues, bool, error) {
	var values alert.FieldValues

	m, err := s.client.HGetAll(ctx, s.fieldsKey(orderID)).Result()
	if err != nil {
		return values, false, fmt.Errorf("redis hgetall %s: %w", orderID, err)
	}
	if len(m) == 0 {
		return values, false, nil
	}

	for _, f := range alert.AllFields() {
		values[f] = m[f.Key()]
	}
	return values, true, nil
}

// Set 实现 alert.FieldCache
func (s *StateStore) Set(ctx context.Context, orderID string, values alert.FieldValues) error {
	key := s.fieldsKey(orderID)
	fields := make(map[string]interface{}, alert.FieldCount)
	for _, f := range alert.AllFields() {
		fields[f.Key()] = values.Get(f)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", orderID, err)
	}
	return nil
}
