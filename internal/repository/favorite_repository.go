package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/twitter-core/internal/model"
)

type FavoriteRepository interface {
	// Add 幂等；返回是否真正插入了新行
	Add(ctx context.Context, userID string, tweetID int64) (bool, error)
	// Remove 幂等；返回是否真正删除了行
	Remove(ctx context.Context, userID string, tweetID int64) (bool, error)
	// FavoritedAmong 返回 tweetIDs 中被 userID 收藏的集合
	FavoritedAmong(ctx context.Context, userID string, tweetIDs []int64) (map[int64]bool, error)
}

type favoriteRepository struct{ db *gorm.DB }

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository { return &favoriteRepository{db: db} }

func (r *favoriteRepository) Add(ctx context.Context, userID string, tweetID int64) (bool, error) {
	f := &model.Favorite{UserID: userID, TweetID: tweetID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID string, tweetID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *favoriteRepository) FavoritedAmong(ctx context.Context, userID string, tweetIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if userID == "" || len(tweetIDs) == 0 {
		return out, nil
	}
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Favorite{}).
		Where("user_id = ? AND tweet_id IN ?", userID, tweetIDs).
		Pluck("tweet_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
