package middleware

import (
	"InnerCompassGo/config"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger 请求日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []interface{}{
			"requestID", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"clientIP", c.ClientIP(),
			"latency", time.Since(start).String(),
		}
		if uid, ok := c.Get("uid"); ok {
			fields = append(fields, "uid", uid)
		}
		if len(c.Errors) > 0 {
			config.Logger.Warnw("request", append(fields, "errors", c.Errors.String())...)
			return
		}
		config.Logger.Infow("request", fields...)
	}
}
