package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/entity"
	redisinfra "oip/dpnotify/pkg/infra/redis"
	"oip/dpnotify/pkg/logger"
	"oip/dpnotify/pkg/mailer"
)

// NotificationLog 通知记录存储
type NotificationLog interface {
	Create(ctx context.Context, n *entity.Notification) error
	UpdateStatus(ctx context.Context, id string, status string, errorMsg string) error
}

// ResultPublisher 投递结果发布
type ResultPublisher interface {
	PublishDelivery(ctx context.Context, event *redisinfra.DeliveryEvent) error
}

// MailService 邮件投递服务
// 每个通知只发送一次；结果写入通知记录并发布事件，均为可选
type MailService struct {
	mailer    mailer.Mailer
	log       NotificationLog
	publisher ResultPublisher
	logger    logger.Logger
	now       func() time.Time
}

// Option MailService 可选项
type Option func(*MailService)

// WithNotificationLog 记录每次投递
func WithNotificationLog(l NotificationLog) Option {
	return func(s *MailService) { s.log = l }
}

// WithResultPublisher 发布投递结果
func WithResultPublisher(p ResultPublisher) Option {
	return func(s *MailService) { s.publisher = p }
}

// NewMailService 创建邮件投递服务
func NewMailService(m mailer.Mailer, log logger.Logger, opts ...Option) *MailService {
	s := &MailService{
		mailer: m,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver 发送通知邮件，返回发送错误；未配置邮件服务时记为 SKIPPED 并返回 nil
// 记录与发布失败只记日志，不影响返回值
func (s *MailService) Deliver(ctx context.Context, n *alert.Notification) error {
	// 1. 写入 PENDING 记录
	recordID := s.createRecord(ctx, n)

	// 2. 发送（单次尝试）
	sendErr := s.mailer.Send(ctx, &mailer.Message{
		To:      n.To,
		Subject: n.Subject,
		Text:    n.Text,
	})

	status := entity.NotificationStatusSent
	errMsg := ""
	switch {
	case errors.Is(sendErr, mailer.ErrMailerDisabled):
		status = entity.NotificationStatusSkipped
		errMsg = sendErr.Error()
		sendErr = nil
		s.logger.Warnf(ctx, "[MailService] Email skipped for Order #%s: mailer disabled", n.OrderID)
	case sendErr != nil:
		status = entity.NotificationStatusFailed
		errMsg = sendErr.Error()
		s.logger.Errorf(ctx, "[MailService] Email failed for Order #%s: %v", n.OrderID, sendErr)
	default:
		s.logger.Infof(ctx, "[MailService] Email sent for Order #%s", n.OrderID)
	}

	// 3. 更新记录
	if recordID != "" {
		if err := s.log.UpdateStatus(ctx, recordID, status, errMsg); err != nil {
			s.logger.Warnf(ctx, "[MailService] Update notification %s failed: %v", recordID, err)
		}
	}

	// 4. 发布结果事件
	if s.publisher != nil {
		event := &redisinfra.DeliveryEvent{
			OrderID:    n.OrderID,
			Key:        n.Key,
			Fields:     n.Fields,
			Recipients: n.To,
			Status:     status,
			Error:      errMsg,
			Timestamp:  s.now().Unix(),
		}
		if err := s.publisher.PublishDelivery(ctx, event); err != nil {
			s.logger.Warnf(ctx, "[MailService] Publish delivery event failed: %v", err)
		}
	}

	return sendErr
}

// createRecord 写入通知记录，未配置或失败时返回空 ID
func (s *MailService) createRecord(ctx context.Context, n *alert.Notification) string {
	if s.log == nil {
		return ""
	}

	fields, _ := json.Marshal(n.Fields)
	recipients, _ := json.Marshal(n.To)

	rec := &entity.Notification{
		ID:            uuid.New().String(),
		OrderID:       n.OrderID,
		TransitionKey: n.Key,
		Fields:        datatypes.JSON(fields),
		Recipients:    datatypes.JSON(recipients),
		Subject:       n.Subject,
		Status:        entity.NotificationStatusPending,
	}
	if err := s.log.Create(ctx, rec); err != nil {
		s.logger.Warnf(ctx, "[MailService] Create notification record failed: %v", err)
		return ""
	}
	return rec.ID
}
