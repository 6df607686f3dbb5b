package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DeliveryEvent 邮件投递结果通知
type DeliveryEvent struct {
	OrderID    string   `json:"order_id"`
	Key        string   `json:"key"`
	Fields     []string `json:"fields"`
	Recipients []string `json:"recipients"`
	Status     string   `json:"status"` // SENT/FAILED
	Error      string   `json:"error,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client  *redis.Client
	channel string
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(client *redis.Client, channel string) *PubSub {
	return &PubSub{client: client, channel: channel}
}

// PublishDelivery 发布投递结果
func (p *PubSub) PublishDelivery(ctx context.Context, event *DeliveryEvent) error {
	msgJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish delivery event: %w", err)
	}

	return nil
}

// Subscribe 订阅投递结果频道
func (p *PubSub) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}
