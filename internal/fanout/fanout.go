// Package fanout 在提交之后把实时事件推给在线会话，尽力而为，不落盘。
package fanout

import "context"

// 事件名，同时用作指标标签与推送消息的 type 字段
const (
	EventTweetAdded        = "tweet_added"
	EventNotificationAdded = "notification_added"
)

// Publisher 由变更服务在提交后调用；实现不得阻塞调用方，也不返回错误
type Publisher interface {
	// TweetAdded 推给 authorID 的全部粉丝（不含作者本人）
	TweetAdded(ctx context.Context, tweetID int64, authorID string)
	// NotificationAdded 仅是让 userID 重新拉取通知的信号
	NotificationAdded(ctx context.Context, userID string)
}

// Transport 把事件投递给已连接的会话
type Transport interface {
	PushTweetAdded(ctx context.Context, tweetID int64, recipientIDs []string) error
	PushNotificationAdded(ctx context.Context, recipientID string) error
}

// FollowerResolver 在发布时解析粉丝，不做缓存
type FollowerResolver interface {
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// Nop 丢弃一切事件
type Nop struct{}

func (Nop) TweetAdded(context.Context, int64, string) {}
func (Nop) NotificationAdded(context.Context, string) {}
