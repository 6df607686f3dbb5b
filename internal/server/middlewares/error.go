package middlewares

import (
	"github.com/gin-gonic/gin"

	"oip/dpnotify/pkg/ginx"
	"oip/dpnotify/pkg/logger"
)

// Recovery 捕获 panic，返回统一 500 响应
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic recovered: %v", r)
				ginx.InternalError(c, "Internal server error")
			}
		}()
		c.Next()
	}
}

// ErrorHandler 处理通过 c.Error 登记但未写响应的错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.Errorf(c.Request.Context(), "[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err.Err)
		if !c.Writer.Written() {
			ginx.InternalError(c, err.Error())
		}
	}
}
