package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oip/dpnotify/internal/server/handlers/notification"
	"oip/dpnotify/internal/server/handlers/webhook"
	"oip/dpnotify/internal/server/middlewares"
	"oip/dpnotify/pkg/ginx"
	"oip/dpnotify/pkg/logger"
)

// SetupRoutes 配置所有路由
func SetupRoutes(
	serviceName string,
	webhookHandler *webhook.WebhookHandler,
	notificationHandler *notification.NotificationHandler,
	log logger.Logger,
) *gin.Engine {
	ginx.RegisterJSONTagNames()

	r := gin.New()
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.Recovery(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "✅ Webhook app is running")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"message": "Service is running",
		})
	})

	r.POST("/webhook", webhookHandler.Receive)

	v1 := r.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.GET("/:id/notifications", notificationHandler.List)
		}
	}

	return r
}
