package webhook

import (
	"context"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/pkg/logger"
)

// SnapshotHandler 订单快照处理（由 alert.Notifier 实现）
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, snap *alert.OrderSnapshot) (*alert.Outcome, error)
}

// WebhookHandler 订单推送 HTTP 处理器
type WebhookHandler struct {
	notifier SnapshotHandler
	logger   logger.Logger
}

// NewWebhookHandler 创建推送处理器实例
func NewWebhookHandler(notifier SnapshotHandler, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		notifier: notifier,
		logger:   log,
	}
}
