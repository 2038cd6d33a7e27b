package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/twitter-core/internal/model"
)

type TweetRepository interface {
	Create(ctx context.Context, t *model.Tweet) error
	FindByID(ctx context.Context, id int64) (*model.Tweet, error)
	// ListByOwner 按 created_at、id 倒序
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Tweet, error)
	// ListFavoritedBy 返回 userID 收藏的推文，排序同 ListByOwner
	ListFavoritedBy(ctx context.Context, userID string) ([]*model.Tweet, error)
	// IncrementCounter 单条 UPDATE 原子加减，不做读改写
	IncrementCounter(ctx context.Context, id int64, field string, delta int64) error
}

type tweetRepository struct{ db *gorm.DB }

func NewTweetRepository(db *gorm.DB) TweetRepository { return &tweetRepository{db: db} }

func (r *tweetRepository) Create(ctx context.Context, t *model.Tweet) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *tweetRepository) FindByID(ctx context.Context, id int64) (*model.Tweet, error) {
	var t model.Tweet
	if err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *tweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Tweet, error) {
	var res []*model.Tweet
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&res).Error
	return res, err
}

func (r *tweetRepository) ListFavoritedBy(ctx context.Context, userID string) ([]*model.Tweet, error) {
	var res []*model.Tweet
	favorited := r.db.WithContext(ctx).Model(&model.Favorite{}).Select("tweet_id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id IN (?)", favorited).
		Order("created_at DESC").Order("id DESC").
		Find(&res).Error
	return res, err
}

func (r *tweetRepository) IncrementCounter(ctx context.Context, id int64, field string, delta int64) error {
	if field != model.CounterRetweets && field != model.CounterShared {
		return ErrUnknownCounter
	}
	q := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("id = ?", id)
	if delta < 0 {
		// 计数器不能减成负数
		q = q.Where(field+" >= ?", -delta)
	}
	res := q.UpdateColumn(field, gorm.Expr(field+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
