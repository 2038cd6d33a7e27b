package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/twitter-core/config"
	"github.com/d60-Lab/twitter-core/internal/api"
	"github.com/d60-Lab/twitter-core/internal/api/handler"
	"github.com/d60-Lab/twitter-core/internal/fanout"
	"github.com/d60-Lab/twitter-core/internal/live"
	"github.com/d60-Lab/twitter-core/internal/repository"
	"github.com/d60-Lab/twitter-core/internal/service"
	"github.com/d60-Lab/twitter-core/pkg/database"
	"github.com/d60-Lab/twitter-core/pkg/logger"
	"github.com/d60-Lab/twitter-core/pkg/tracing"
)

// @title Twitter Core API
// @version 1.0
// @description 发帖、转推、收藏与实时推送
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	store := repository.NewStore(db)

	hub := live.NewHub()
	defer hub.Stop()

	var transport fanout.Transport = hub
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		transport = live.NewRedisTransport(rdb, cfg.Redis.Channel)
		relay := live.NewRelay(rdb, cfg.Redis.Channel, hub)
		go func() {
			if err := relay.Run(ctx, nil); err != nil {
				logger.Error("live relay stopped", zap.Error(err))
			}
		}()
	}

	dispatcher := fanout.NewDispatcher(store.Follows(), transport, cfg.Fanout.QueueSize)
	stopDispatcher := dispatcher.Start(cfg.Fanout.Workers)

	h := handler.New(
		service.NewMutationService(store, dispatcher, service.WithRenotifyFavorites(cfg.Feed.RenotifyFavorites)),
		service.NewFeedService(store),
		service.NewNotificationService(store.Notifications()),
		service.NewRelationshipService(store.Users(), store.Follows()),
		hub,
	)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	// 先停 HTTP 再排空 fanout 队列，保证已提交的变更尽量推送出去
	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Warn("fanout drain incomplete", zap.Error(err))
	}
	return nil
}
