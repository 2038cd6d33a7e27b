package model

import "time"

type NotificationType string

const (
	NotificationTweetRetweeted NotificationType = "TweetRetweeted"
	NotificationTweetFavoured  NotificationType = "TweetFavoured"
)

// Notification 发给原推作者的通知，UserID 为接收者
type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string           `gorm:"type:varchar(36);index:idx_notification_user;not null" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Message   string           `gorm:"type:text" json:"message"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
