package alert

import (
	"context"
	"sync"
	"time"
)

// MemoryFieldCache 进程内字段缓存（进程重启后丢失）
type MemoryFieldCache struct {
	mu     sync.RWMutex
	values map[string]FieldValues
}

// NewMemoryFieldCache 创建进程内字段缓存
func NewMemoryFieldCache() *MemoryFieldCache {
	return &MemoryFieldCache{values: make(map[string]FieldValues)}
}

// Get 获取缓存值
func (c *MemoryFieldCache) Get(_ context.Context, orderID string) (FieldValues, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[orderID]
	return v, ok, nil
}

// Set 覆盖缓存值
func (c *MemoryFieldCache) Set(_ context.Context, orderID string, values FieldValues) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[orderID] = values
	return nil
}

// MemoryNotifiedSet 进程内去重集合
// ttl > 0 时 Key 在 ttl 后过期，过期项在写入时惰性清理；ttl == 0 表示永不过期
type MemoryNotifiedSet struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]time.Time // key -> 插入时间
	lastSweep time.Time
}

// NewMemoryNotifiedSet 创建进程内去重集合
func NewMemoryNotifiedSet(ttl time.Duration) *MemoryNotifiedSet {
	return newMemoryNotifiedSet(ttl, time.Now)
}

func newMemoryNotifiedSet(ttl time.Duration, now func() time.Time) *MemoryNotifiedSet {
	return &MemoryNotifiedSet{
		ttl:       ttl,
		now:       now,
		entries:   make(map[string]time.Time),
		lastSweep: now(),
	}
}

// Add 检查并插入
func (s *MemoryNotifiedSet) Add(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if s.aliveLocked(key, now) {
		return false, nil
	}
	s.entries[key] = now
	return true, nil
}

// Contains 判断 Key 是否存在且未过期
func (s *MemoryNotifiedSet) Contains(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveLocked(key, s.now()), nil
}

// Len 当前保存的 Key 数量（含尚未清理的过期项）
func (s *MemoryNotifiedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryNotifiedSet) aliveLocked(key string, now time.Time) bool {
	added, ok := s.entries[key]
	if !ok {
		return false
	}
	return s.ttl <= 0 || now.Sub(added) < s.ttl
}

// sweepLocked 每隔一个 ttl 周期全量清理一次过期项
func (s *MemoryNotifiedSet) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	for key, added := range s.entries {
		if now.Sub(added) >= s.ttl {
			delete(s.entries, key)
		}
	}
	s.lastSweep = now
}
