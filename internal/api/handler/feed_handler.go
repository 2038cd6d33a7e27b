package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/twitter-core/internal/api/middleware"
	"github.com/d60-Lab/twitter-core/pkg/response"
)

// ListTweetsByUser 用户主页推文，新的在前
// @Summary 用户推文列表
// @Tags 推文
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=[]model.TweetView}
// @Router /api/v1/users/{username}/tweets [get]
func (h *Handler) ListTweetsByUser(c *gin.Context) {
	list, err := h.feedService.ListTweetsByUser(c.Request.Context(), c.Param("username"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// ListFavoritesByUser 用户收藏的推文
// @Summary 用户收藏列表
// @Tags 推文
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=[]model.TweetView}
// @Router /api/v1/users/{username}/favorites [get]
func (h *Handler) ListFavoritesByUser(c *gin.Context) {
	list, err := h.feedService.ListFavoritesByUser(c.Request.Context(), c.Param("username"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}
