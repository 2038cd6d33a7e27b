package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/twitter-core/internal/api/middleware"
	"github.com/d60-Lab/twitter-core/pkg/response"
)

type tweetRequest struct {
	Text string `json:"text"`
}

// PostTweet 发布推文
// @Summary 发布推文
// @Tags 推文
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body tweetRequest true "推文内容"
// @Success 201 {object} response.Response{data=model.TweetView}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/tweets [post]
func (h *Handler) PostTweet(c *gin.Context) {
	var req tweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tw, err := h.mutService.PostTweet(c.Request.Context(), middleware.UserID(c), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, tw.View())
}

// Reply 回复推文
// @Summary 回复推文
// @Tags 推文
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "推文ID"
// @Param request body tweetRequest true "回复内容"
// @Success 201 {object} response.Response{data=model.TweetView}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id}/replies [post]
func (h *Handler) Reply(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	var req tweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tw, err := h.mutService.Reply(c.Request.Context(), middleware.UserID(c), id, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, tw.View())
}

// Retweet 转推
// @Summary 转推
// @Tags 推文
// @Produce json
// @Security BearerAuth
// @Param id path int true "推文ID"
// @Success 201 {object} response.Response{data=model.TweetView}
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id}/retweet [post]
func (h *Handler) Retweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	rt, err := h.mutService.Retweet(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, rt.View())
}

// AddFavorite 收藏
// @Summary 收藏推文
// @Tags 推文
// @Produce json
// @Security BearerAuth
// @Param id path int true "推文ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id}/favorite [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	if err := h.mutService.AddFavorite(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveFavorite 取消收藏
// @Summary 取消收藏
// @Tags 推文
// @Produce json
// @Security BearerAuth
// @Param id path int true "推文ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id}/favorite [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	if err := h.mutService.RemoveFavorite(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// GetTweet 查询单条推文
// @Summary 查询推文
// @Tags 推文
// @Produce json
// @Param id path int true "推文ID"
// @Success 200 {object} response.Response{data=model.TweetView}
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id} [get]
func (h *Handler) GetTweet(c *gin.Context) {
	id, ok := tweetID(c)
	if !ok {
		return
	}
	view, err := h.feedService.GetTweet(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

func tweetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid tweet id")
		return 0, false
	}
	return id, true
}
