package service

import (
	"time"

	"github.com/d60-Lab/twitter-core/internal/model"
)

// ComposeNotification 纯构造，不落库；recipientID 总是原推作者
func ComposeNotification(kind model.NotificationType, actorUsername, recipientID string, now time.Time) *model.Notification {
	var msg string
	switch kind {
	case model.NotificationTweetRetweeted:
		msg = actorUsername + " retweeted your tweet."
	case model.NotificationTweetFavoured:
		msg = actorUsername + " favoured your tweet."
	}
	return &model.Notification{
		UserID:    recipientID,
		Type:      kind,
		Message:   msg,
		IsRead:    false,
		CreatedAt: now,
	}
}
