package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/twitter-core/config"
	_ "github.com/d60-Lab/twitter-core/docs"
	"github.com/d60-Lab/twitter-core/internal/api/handler"
	"github.com/d60-Lab/twitter-core/internal/api/middleware"
)

// NewRouter 注册全部路由；写接口需要登录并限流，读接口允许匿名
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.Sentry(), middleware.Recovery(), middleware.Logger())
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.Auth(cfg.Server.JWTSecret)
	optional := middleware.OptionalAuth(cfg.Server.JWTSecret)
	limit := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).Middleware()

	v1 := r.Group("/api/v1")
	// websocket 不能经过 gzip
	v1.GET("/ws", auth, h.Live)

	api := v1.Group("", gzip.Gzip(gzip.DefaultCompression))

	tweets := api.Group("/tweets")
	{
		tweets.POST("", auth, limit, h.PostTweet)
		tweets.GET("/:id", optional, h.GetTweet)
		tweets.POST("/:id/replies", auth, limit, h.Reply)
		tweets.POST("/:id/retweet", auth, limit, h.Retweet)
		tweets.POST("/:id/favorite", auth, limit, h.AddFavorite)
		tweets.DELETE("/:id/favorite", auth, limit, h.RemoveFavorite)
	}

	users := api.Group("/users", optional)
	{
		users.GET("/:username/tweets", h.ListTweetsByUser)
		users.GET("/:username/favorites", h.ListFavoritesByUser)
	}

	notes := api.Group("/notifications", auth)
	{
		notes.GET("", h.ListNotifications)
		notes.GET("/unread-count", h.UnreadCount)
		notes.PUT("/read-all", h.MarkAllRead)
	}

	rel := api.Group("/relations")
	{
		rel.POST("/follow", auth, limit, h.Follow)
		rel.POST("/unfollow", auth, limit, h.Unfollow)
		rel.GET("/:user_id/following", h.ListFollowing)
		rel.GET("/:user_id/followers", h.ListFollowers)
	}
	return r
}
