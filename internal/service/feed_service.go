package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/twitter-core/internal/model"
	"github.com/d60-Lab/twitter-core/internal/repository"
)

// FeedService 只读查询，直接访问 Store，不经过变更与 fanout
type FeedService interface {
	// ListTweetsByUser 用户名不存在时返回空列表而非错误
	ListTweetsByUser(ctx context.Context, username, viewerID string) ([]model.TweetView, error)
	ListFavoritesByUser(ctx context.Context, username, viewerID string) ([]model.TweetView, error)
	GetTweet(ctx context.Context, id int64, viewerID string) (*model.TweetView, error)
}

type feedService struct {
	store repository.Store
}

func NewFeedService(store repository.Store) FeedService {
	return &feedService{store: store}
}

func (s *feedService) ListTweetsByUser(ctx context.Context, username, viewerID string) ([]model.TweetView, error) {
	return s.listFor(ctx, username, viewerID, s.store.Tweets().ListByOwner)
}

func (s *feedService) ListFavoritesByUser(ctx context.Context, username, viewerID string) ([]model.TweetView, error) {
	return s.listFor(ctx, username, viewerID, s.store.Tweets().ListFavoritedBy)
}

func (s *feedService) listFor(ctx context.Context, username, viewerID string,
	query func(ctx context.Context, userID string) ([]*model.Tweet, error)) ([]model.TweetView, error) {
	u, err := s.store.Users().FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.TweetView{}, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	tweets, err := query(ctx, u.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.annotate(ctx, tweets, viewerID)
}

func (s *feedService) GetTweet(ctx context.Context, id int64, viewerID string) (*model.TweetView, error) {
	t, err := s.store.Tweets().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(notFound("tweet", err))
	}
	views, err := s.annotate(ctx, []*model.Tweet{t}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// annotate 投影为视图，并按 viewer 的收藏集合设置标记；匿名 viewer 全为 false
func (s *feedService) annotate(ctx context.Context, tweets []*model.Tweet, viewerID string) ([]model.TweetView, error) {
	views := make([]model.TweetView, len(tweets))
	ids := make([]int64, len(tweets))
	for i, t := range tweets {
		views[i] = t.View()
		ids[i] = t.ID
	}
	marks, err := s.store.Favorites().FavoritedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	for i := range views {
		views[i].IsFavoriteToViewer = marks[views[i].ID]
	}
	return views, nil
}
