package model

import "time"

// Favorite 用户收藏推文（多对多，(user_id, tweet_id) 唯一）
type Favorite struct {
	UserID    string `gorm:"primaryKey;type:varchar(36)"`
	TweetID   int64  `gorm:"primaryKey;autoIncrement:false;index:idx_favorite_tweet"`
	CreatedAt time.Time
}

func (Favorite) TableName() string { return "favorites" }
