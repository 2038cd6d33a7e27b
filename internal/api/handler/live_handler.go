package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/twitter-core/internal/api/middleware"
	"github.com/d60-Lab/twitter-core/pkg/logger"
)

// Live 升级为 websocket，接收 tweet_added / notification_added 推送
// @Summary 实时推送
// @Tags 实时
// @Security BearerAuth
// @Param token query string false "浏览器无法设置请求头时使用"
// @Success 101
// @Router /api/v1/ws [get]
func (h *Handler) Live(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		logger.Warn("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
	}
}
