package notification

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"oip/dpnotify/internal/entity"
	"oip/dpnotify/internal/server/apimodel/response"
	"oip/dpnotify/pkg/ginx"
	"oip/dpnotify/pkg/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repository 通知记录查询
type Repository interface {
	ListByOrder(ctx context.Context, orderID string, limit int) ([]*entity.Notification, error)
}

// NotificationHandler 通知记录 HTTP 处理器
type NotificationHandler struct {
	repo   Repository // 为 nil 表示未配置 MySQL
	logger logger.Logger
}

// NewNotificationHandler 创建处理器实例
func NewNotificationHandler(repo Repository, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{repo: repo, logger: log}
}

// List 查询订单的通知记录
// GET /api/v1/orders/:id/notifications?limit=50
func (h *NotificationHandler) List(c *gin.Context) {
	if h.repo == nil {
		ginx.ServiceUnavailable(c, "notification log is not configured")
		return
	}

	orderID := c.Param("id")
	if orderID == "" {
		ginx.BadRequest(c, "order id required")
		return
	}

	limit := defaultLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			ginx.BadRequest(c, "limit must be a positive integer")
			return
		}
		if n < maxLimit {
			limit = n
		} else {
			limit = maxLimit
		}
	}

	list, err := h.repo.ListByOrder(c.Request.Context(), orderID, limit)
	if err != nil {
		h.logger.Errorf(c.Request.Context(), "[Notification] list failed for order %s: %v", orderID, err)
		ginx.InternalError(c, "Failed to load notifications")
		return
	}

	ginx.Success(c, response.FromNotificationEntities(list))
}
