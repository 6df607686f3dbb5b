package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/domains/common/job"
	"oip/dpnotify/internal/framework"
	"oip/dpnotify/pkg/logger"
)

// QueueDispatcher 将通知封装为标准 Job 并投递到队列，由 Worker 异步发送
type QueueDispatcher struct {
	publisher framework.Publisher
	queue     string
	ttl       uint32
	logger    logger.Logger
}

// NewQueueDispatcher 创建队列投递器
func NewQueueDispatcher(publisher framework.Publisher, queue string, ttl time.Duration, log logger.Logger) *QueueDispatcher {
	return &QueueDispatcher{
		publisher: publisher,
		queue:     queue,
		ttl:       uint32(ttl.Seconds()),
		logger:    log,
	}
}

// Dispatch 实现 alert.Dispatcher
func (d *QueueDispatcher) Dispatch(ctx context.Context, n *alert.Notification) error {
	requestID := logger.TraceID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	j, err := job.New(requestID, job.ActionOrderAlertMail, n.OrderID, n)
	if err != nil {
		return err
	}
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal job failed: %w", err)
	}

	if err := d.publisher.Publish(d.queue, data, d.ttl, 0); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	d.logger.Debugf(ctx, "[QueueDispatcher] Enqueued %s to %s", n.Key, d.queue)
	return nil
}
