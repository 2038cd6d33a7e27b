package model

import "time"

// 计数器列名，IncrementCounter 只接受这两个
const (
	CounterRetweets = "retweet_count"
	CounterShared   = "shared_count"
)

// Tweet 推文；创建后只有计数器会变化
type Tweet struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	Text            string    `gorm:"type:text;not null"`
	OwnerID         string    `gorm:"type:varchar(36);index:idx_tweet_owner_created;not null"`
	Owner           User      `gorm:"foreignKey:OwnerID"`
	RetweetCount    int64     `gorm:"not null;default:0"`
	SharedCount     int64     `gorm:"not null;default:0"`
	RetweetedFromID *int64    `gorm:"index"`
	RepliedToID     *int64    `gorm:"index"`
	CreatedAt       time.Time `gorm:"index:idx_tweet_owner_created"`
}

func (Tweet) TableName() string { return "tweets" }

// TweetView 面向调用方的推文视图
type TweetView struct {
	ID                 int64     `json:"id"`
	Text               string    `json:"text"`
	CreatedAt          time.Time `json:"created_at"`
	RetweetCount       int64     `json:"retweet_count"`
	SharedCount        int64     `json:"shared_count"`
	AuthorUsername     string    `json:"author_username"`
	RetweetedFromID    *int64    `json:"retweeted_from_id,omitempty"`
	RepliedToID        *int64    `json:"replied_to_id,omitempty"`
	IsFavoriteToViewer bool      `json:"is_favorite_to_viewer"`
}

// View 投影为视图；Owner 需已预加载
func (t *Tweet) View() TweetView {
	return TweetView{
		ID:              t.ID,
		Text:            t.Text,
		CreatedAt:       t.CreatedAt,
		RetweetCount:    t.RetweetCount,
		SharedCount:     t.SharedCount,
		AuthorUsername:  t.Owner.Username,
		RetweetedFromID: t.RetweetedFromID,
		RepliedToID:     t.RepliedToID,
	}
}
