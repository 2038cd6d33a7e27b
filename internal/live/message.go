// Package live 维护在线会话并把 fanout 事件推送给它们。
package live

import (
	"encoding/json"

	"github.com/d60-Lab/twitter-core/internal/fanout"
)

// Message 推送给客户端的帧；notification_added 只是一个信号，不带内容
type Message struct {
	Type    string `json:"type"`
	TweetID int64  `json:"tweet_id,omitempty"`
}

func tweetAddedFrame(tweetID int64) []byte {
	b, _ := json.Marshal(Message{Type: fanout.EventTweetAdded, TweetID: tweetID})
	return b
}

func notificationAddedFrame() []byte {
	b, _ := json.Marshal(Message{Type: fanout.EventNotificationAdded})
	return b
}
