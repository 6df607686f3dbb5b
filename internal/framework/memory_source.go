package framework

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull 内存队列已满
var ErrQueueFull = errors.New("memory queue is full")

// MemorySource 进程内消息队列（同时实现 Publisher 与 MessageSource）
// 未部署 lmstfy 时使用；进程退出时未消费的消息丢失，ttl/delay/ttr 均被忽略
type MemorySource struct {
	mu       sync.Mutex
	capacity int
	queues   map[string]chan *Message
}

// NewMemorySource 创建内存队列，capacity 为每个队列的缓冲大小
func NewMemorySource(capacity int) *MemorySource {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemorySource{
		capacity: capacity,
		queues:   make(map[string]chan *Message),
	}
}

func (m *MemorySource) queue(name string) chan *Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[name]
	if !ok {
		q = make(chan *Message, m.capacity)
		m.queues[name] = q
	}
	return q
}

// Publish 发布消息（非阻塞，队列满时返回 ErrQueueFull）
func (m *MemorySource) Publish(queue string, data []byte, _, _ uint32) error {
	msg := &Message{
		ID:    uuid.New().String(),
		Queue: queue,
		Data:  data,
	}
	select {
	case m.queue(queue) <- msg:
		return nil
	default:
		return fmt.Errorf("publish to %s: %w", queue, ErrQueueFull)
	}
}

// Consume 拉取消息，timeout 内没有消息时返回 nil, nil
func (m *MemorySource) Consume(queue string, timeout time.Duration, _ time.Duration) (*Message, error) {
	q := m.queue(queue)
	if timeout <= 0 {
		select {
		case msg := <-q:
			return msg, nil
		default:
			return nil, nil
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-q:
		return msg, nil
	case <-timer.C:
		return nil, nil
	}
}

// Ack 内存队列出队即删除，无需确认
func (m *MemorySource) Ack(string, string) error {
	return nil
}

// Len 队列中待消费的消息数
func (m *MemorySource) Len(queue string) int {
	return len(m.queue(queue))
}
