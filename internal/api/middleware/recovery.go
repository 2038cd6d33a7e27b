package middleware

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/twitter-core/pkg/logger"
	"github.com/d60-Lab/twitter-core/pkg/response"
)

// Sentry 在 hub 上挂载请求信息；未初始化 sentry 时为空操作
func Sentry() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{Repanic: true})
}

// Recovery 兜底 panic，上报 sentry 后返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.RecoverWithContext(c.Request.Context(), r)
				} else {
					sentry.CurrentHub().Recover(r)
				}
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.FullPath()))
				response.InternalError(c, fmt.Errorf("panic: %v", r))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Logger 请求日志；5xx 时附带 handler 记录的错误
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user", UserID(c)),
		}
		if c.Writer.Status() >= 500 {
			if err := c.Errors.Last(); err != nil {
				fields = append(fields, zap.Error(err.Err))
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.CaptureException(err.Err)
				}
			}
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
