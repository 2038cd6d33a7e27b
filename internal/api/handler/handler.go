package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/twitter-core/internal/live"
	"github.com/d60-Lab/twitter-core/internal/service"
	"github.com/d60-Lab/twitter-core/pkg/response"
)

// Handler 聚合各业务服务的 HTTP 入口
type Handler struct {
	mutService  service.MutationService
	feedService service.FeedService
	noteService service.NotificationService
	relService  service.RelationshipService
	hub         *live.Hub
}

func New(mut service.MutationService, feed service.FeedService, notes service.NotificationService,
	rel service.RelationshipService, hub *live.Hub) *Handler {
	return &Handler{mutService: mut, feedService: feed, noteService: notes, relService: rel, hub: hub}
}

// fail 把服务层错误映射为统一响应
func fail(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationFailed(c, ve.Fields)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrFollowSelf):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
