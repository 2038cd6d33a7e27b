package service

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/d60-Lab/twitter-core/internal/repository"
	"github.com/d60-Lab/twitter-core/internal/testutil"
)

type tweetEvent struct {
	TweetID  int64
	AuthorID string
}

// recordingPublisher 记录变更服务发出的事件
type recordingPublisher struct {
	mu            sync.Mutex
	tweets        []tweetEvent
	notifications []string
}

func (p *recordingPublisher) TweetAdded(_ context.Context, tweetID int64, authorID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tweets = append(p.tweets, tweetEvent{TweetID: tweetID, AuthorID: authorID})
}

func (p *recordingPublisher) NotificationAdded(_ context.Context, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, userID)
}

func (p *recordingPublisher) tweetEvents() []tweetEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tweetEvent(nil), p.tweets...)
}

func (p *recordingPublisher) notificationEvents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notifications...)
}

type fixture struct {
	db   *gorm.DB
	pub  *recordingPublisher
	mut  MutationService
	feed FeedService
}

func newFixture(t *testing.T, opts ...MutationOption) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	pub := &recordingPublisher{}
	return &fixture{
		db:   db,
		pub:  pub,
		mut:  NewMutationService(store, pub, opts...),
		feed: NewFeedService(store),
	}
}
