package alertmail

import (
	"context"
	"encoding/json"
	"fmt"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/domains/common"
	"oip/dpnotify/internal/domains/common/job"
	"oip/dpnotify/internal/domains/common/response"
	"oip/dpnotify/internal/framework"
	"oip/dpnotify/pkg/errorutil"
)

// AlertMailHandler 订单提醒邮件 Handler
type AlertMailHandler struct {
	ctx          context.Context
	meta         *job.Meta
	notification *alert.Notification
	sender       common.MailSender
}

// NewAlertMailHandler 创建提醒邮件 Handler
func NewAlertMailHandler(ctx context.Context, meta *job.Meta, payload json.RawMessage, svc *common.Services) (common.HandlerServ, error) {
	if svc == nil || svc.Mail == nil {
		return nil, fmt.Errorf("mail sender is not configured")
	}

	var n alert.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification failed: %w", err)
	}

	return &AlertMailHandler{
		ctx:          ctx,
		meta:         meta,
		notification: &n,
		sender:       svc.Mail,
	}, nil
}

// GetProcess 投递邮件
func (h *AlertMailHandler) GetProcess() *response.Response {
	result := response.NewMailResult()

	chain := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.validate,
		h.deliver,
	})
	err := chain.Run(h.ctx)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)
	return resp
}

// validate 校验通知内容
func (h *AlertMailHandler) validate(ctx context.Context) error {
	if h.notification.OrderID == "" {
		return errorutil.NonRetriable("order_id is required")
	}
	if h.notification.OrderID != h.meta.ID {
		return errorutil.NonRetriable(fmt.Sprintf("order_id mismatch: job=%s payload=%s",
			h.meta.ID, h.notification.OrderID))
	}
	return nil
}

// deliver 发送邮件（单次尝试）
func (h *AlertMailHandler) deliver(ctx context.Context) error {
	return h.sender.Deliver(ctx, h.notification)
}
