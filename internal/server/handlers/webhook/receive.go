package webhook

import (
	"errors"

	"github.com/gin-gonic/gin"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/server/apimodel/request"
	"oip/dpnotify/internal/server/apimodel/response"
	"oip/dpnotify/pkg/ginx"
	"oip/dpnotify/pkg/logger"
)

const msgInvalidData = "Invalid data"

// Receive 接收订单变更推送
// POST /webhook
//
// 合法请求一律返回 200，meta.message 为 "No updates to send" / "Duplicate ignored" / "OK"；
// 状态存储不可用时返回 500，上游可重推
func (h *WebhookHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	var req request.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnf(ctx, "[Webhook] Missing or invalid order data: %v", err)
		ginx.BadRequestWithValidation(c, msgInvalidData, err)
		return
	}

	snap := req.ToSnapshot()
	ctx = logger.WithValue(ctx, logger.KeyOrderID, snap.ID)
	h.logger.Debugf(ctx, "[Webhook] Received order update: %+v", req.Data)

	outcome, err := h.notifier.HandleSnapshot(ctx, snap)
	if errors.Is(err, alert.ErrInvalidSnapshot) {
		ginx.BadRequest(c, msgInvalidData)
		return
	}
	if err != nil {
		h.logger.Errorf(ctx, "[Webhook] Handle snapshot failed: %v", err)
		ginx.InternalError(c, "Failed to process order update")
		return
	}

	ginx.SuccessWithMessage(c, outcome.Kind.Message(), response.FromOutcome(snap.ID, outcome))
}
