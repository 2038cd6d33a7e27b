package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/twitter-core/internal/fanout"
	"github.com/d60-Lab/twitter-core/pkg/logger"
)

// envelope 是跨实例广播的事件
type envelope struct {
	Type       string   `json:"type"`
	TweetID    int64    `json:"tweet_id,omitempty"`
	Recipients []string `json:"recipients"`
}

// RedisTransport 把事件 PUBLISH 到频道，由每个实例上的 Relay 转给本地会话
type RedisTransport struct {
	rdb     *redis.Client
	channel string
}

var _ fanout.Transport = (*RedisTransport)(nil)

func NewRedisTransport(rdb *redis.Client, channel string) *RedisTransport {
	return &RedisTransport{rdb: rdb, channel: channel}
}

func (t *RedisTransport) PushTweetAdded(ctx context.Context, tweetID int64, recipientIDs []string) error {
	return t.publish(ctx, envelope{Type: fanout.EventTweetAdded, TweetID: tweetID, Recipients: recipientIDs})
}

func (t *RedisTransport) PushNotificationAdded(ctx context.Context, recipientID string) error {
	return t.publish(ctx, envelope{Type: fanout.EventNotificationAdded, Recipients: []string{recipientID}})
}

func (t *RedisTransport) publish(ctx context.Context, e envelope) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := t.rdb.Publish(ctx, t.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Relay 订阅频道并把事件交给本地 Transport（通常是 Hub）
type Relay struct {
	rdb     *redis.Client
	channel string
	local   fanout.Transport
}

func NewRelay(rdb *redis.Client, channel string, local fanout.Transport) *Relay {
	return &Relay{rdb: rdb, channel: channel, local: local}
}

// Run 阻塞直到 ctx 结束；订阅确认后才调用 ready（可为 nil）
func (r *Relay) Run(ctx context.Context, ready func()) error {
	ps := r.rdb.Subscribe(ctx, r.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	if ready != nil {
		ready()
	}
	logger.Info("live relay subscribed", zap.String("channel", r.channel))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.dispatch(ctx, msg.Payload)
		}
	}
}

func (r *Relay) dispatch(ctx context.Context, payload string) {
	var e envelope
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		logger.Warn("live relay bad payload", zap.Error(err))
		return
	}
	var err error
	switch e.Type {
	case fanout.EventTweetAdded:
		err = r.local.PushTweetAdded(ctx, e.TweetID, e.Recipients)
	case fanout.EventNotificationAdded:
		for _, id := range e.Recipients {
			if err = r.local.PushNotificationAdded(ctx, id); err != nil {
				break
			}
		}
	default:
		logger.Warn("live relay unknown event", zap.String("type", e.Type))
		return
	}
	if err != nil {
		logger.Warn("live relay delivery failed", zap.String("type", e.Type), zap.Error(err))
	}
}
