package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/d60-Lab/twitter-core/internal/fanout"
	"github.com/d60-Lab/twitter-core/internal/metrics"
	"github.com/d60-Lab/twitter-core/internal/model"
	"github.com/d60-Lab/twitter-core/internal/repository"
)

var tracer = otel.Tracer("github.com/d60-Lab/twitter-core/internal/service")

// MutationService 发帖、转推、收藏的唯一写入口
type MutationService interface {
	PostTweet(ctx context.Context, actorID, text string) (*model.Tweet, error)
	Reply(ctx context.Context, actorID string, replyToID int64, text string) (*model.Tweet, error)
	Retweet(ctx context.Context, actorID string, tweetID int64) (*model.Tweet, error)
	AddFavorite(ctx context.Context, actorID string, tweetID int64) error
	RemoveFavorite(ctx context.Context, actorID string, tweetID int64) error
}

type MutationOption func(*mutationService)

// WithRenotifyFavorites 为 true 时重复收藏每次都会通知作者；收藏关系本身仍是集合
func WithRenotifyFavorites(v bool) MutationOption {
	return func(s *mutationService) { s.renotifyFavorites = v }
}

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) MutationOption {
	return func(s *mutationService) { s.now = now }
}

type mutationService struct {
	store             repository.Store
	publisher         fanout.Publisher
	renotifyFavorites bool
	now               func() time.Time
}

func NewMutationService(store repository.Store, publisher fanout.Publisher, opts ...MutationOption) MutationService {
	if publisher == nil {
		publisher = fanout.Nop{}
	}
	s := &mutationService{store: store, publisher: publisher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *mutationService) PostTweet(ctx context.Context, actorID, text string) (tweet *model.Tweet, err error) {
	ctx, span := tracer.Start(ctx, "MutationService.PostTweet", trace.WithAttributes(attribute.String("actor", actorID)))
	defer func() { finish(span, "post", err) }()

	return s.createTweet(ctx, actorID, text, nil)
}

func (s *mutationService) Reply(ctx context.Context, actorID string, replyToID int64, text string) (tweet *model.Tweet, err error) {
	ctx, span := tracer.Start(ctx, "MutationService.Reply", trace.WithAttributes(
		attribute.String("actor", actorID), attribute.Int64("reply_to", replyToID)))
	defer func() { finish(span, "reply", err) }()

	return s.createTweet(ctx, actorID, text, &replyToID)
}

func (s *mutationService) createTweet(ctx context.Context, actorID, text string, replyToID *int64) (*model.Tweet, error) {
	if err := ValidateTweetText(text); err != nil {
		return nil, err
	}
	tweet := &model.Tweet{Text: text, OwnerID: actorID, RepliedToID: replyToID, CreatedAt: s.now()}
	err := s.store.Commit(ctx, func(tx repository.Store) error {
		owner, err := tx.Users().FindByID(ctx, actorID)
		if err != nil {
			return notFound("user", err)
		}
		if replyToID != nil {
			if _, err := tx.Tweets().FindByID(ctx, *replyToID); err != nil {
				return notFound("tweet", err)
			}
		}
		if err := tx.Tweets().Create(ctx, tweet); err != nil {
			return err
		}
		tweet.Owner = *owner
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	s.publisher.TweetAdded(ctx, tweet.ID, actorID)
	return tweet, nil
}

// Retweet 插入转推、源推文计数 +1、通知原作者，三者同一事务提交
func (s *mutationService) Retweet(ctx context.Context, actorID string, tweetID int64) (retweet *model.Tweet, err error) {
	ctx, span := tracer.Start(ctx, "MutationService.Retweet", trace.WithAttributes(
		attribute.String("actor", actorID), attribute.Int64("tweet", tweetID)))
	defer func() { finish(span, "retweet", err) }()

	var recipientID string
	err = s.store.Commit(ctx, func(tx repository.Store) error {
		actor, err := tx.Users().FindByID(ctx, actorID)
		if err != nil {
			return notFound("user", err)
		}
		src, err := tx.Tweets().FindByID(ctx, tweetID)
		if err != nil {
			return notFound("tweet", err)
		}

		now := s.now()
		sourceID := src.ID
		rt := &model.Tweet{Text: src.Text, OwnerID: actor.ID, RetweetedFromID: &sourceID, CreatedAt: now}
		if err := tx.Tweets().Create(ctx, rt); err != nil {
			return err
		}
		if err := tx.Tweets().IncrementCounter(ctx, sourceID, model.CounterRetweets, 1); err != nil {
			return err
		}
		n := ComposeNotification(model.NotificationTweetRetweeted, actor.Username, src.OwnerID, now)
		if err := tx.Notifications().Create(ctx, n); err != nil {
			return err
		}
		rt.Owner = *actor
		retweet = rt
		recipientID = src.OwnerID
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.publisher.TweetAdded(ctx, retweet.ID, actorID)
	s.publisher.NotificationAdded(ctx, recipientID)
	return retweet, nil
}

// AddFavorite 默认幂等：已收藏时不改计数、不通知、不推送
func (s *mutationService) AddFavorite(ctx context.Context, actorID string, tweetID int64) (err error) {
	ctx, span := tracer.Start(ctx, "MutationService.AddFavorite", trace.WithAttributes(
		attribute.String("actor", actorID), attribute.Int64("tweet", tweetID)))
	defer func() { finish(span, "favorite", err) }()

	var recipientID string
	err = s.store.Commit(ctx, func(tx repository.Store) error {
		actor, err := tx.Users().FindByID(ctx, actorID)
		if err != nil {
			return notFound("user", err)
		}
		tw, err := tx.Tweets().FindByID(ctx, tweetID)
		if err != nil {
			return notFound("tweet", err)
		}
		added, err := tx.Favorites().Add(ctx, actor.ID, tw.ID)
		if err != nil {
			return err
		}
		if added {
			if err := tx.Tweets().IncrementCounter(ctx, tw.ID, model.CounterShared, 1); err != nil {
				return err
			}
		}
		if !added && !s.renotifyFavorites {
			return nil
		}
		n := ComposeNotification(model.NotificationTweetFavoured, actor.Username, tw.OwnerID, s.now())
		if err := tx.Notifications().Create(ctx, n); err != nil {
			return err
		}
		recipientID = tw.OwnerID
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	if recipientID != "" {
		s.publisher.NotificationAdded(ctx, recipientID)
	}
	return nil
}

// RemoveFavorite 未收藏时是空操作；不通知、不推送
func (s *mutationService) RemoveFavorite(ctx context.Context, actorID string, tweetID int64) (err error) {
	ctx, span := tracer.Start(ctx, "MutationService.RemoveFavorite", trace.WithAttributes(
		attribute.String("actor", actorID), attribute.Int64("tweet", tweetID)))
	defer func() { finish(span, "unfavorite", err) }()

	err = s.store.Commit(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().FindByID(ctx, actorID); err != nil {
			return notFound("user", err)
		}
		if _, err := tx.Tweets().FindByID(ctx, tweetID); err != nil {
			return notFound("tweet", err)
		}
		removed, err := tx.Favorites().Remove(ctx, actorID, tweetID)
		if err != nil || !removed {
			return err
		}
		return tx.Tweets().IncrementCounter(ctx, tweetID, model.CounterShared, -1)
	})
	return storeErr(err)
}

func finish(span trace.Span, op string, err error) {
	result := resultOf(err)
	metrics.ObserveMutation(op, result)
	if result == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
