package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFollowers map[string][]string

func (s staticFollowers) ListFollowerIDs(_ context.Context, userID string) ([]string, error) {
	if userID == "broken" {
		return nil, errors.New("store down")
	}
	return s[userID], nil
}

type pushed struct {
	tweetID    int64
	recipients []string
}

type recordingTransport struct {
	mu            sync.Mutex
	tweets        []pushed
	notifications []string
	fail          bool
}

func (r *recordingTransport) PushTweetAdded(_ context.Context, tweetID int64, recipientIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("transport down")
	}
	r.tweets = append(r.tweets, pushed{tweetID: tweetID, recipients: append([]string(nil), recipientIDs...)})
	return nil
}

func (r *recordingTransport) PushNotificationAdded(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("transport down")
	}
	r.notifications = append(r.notifications, recipientID)
	return nil
}

func stopNow(t *testing.T, stop func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
}

func TestDispatcher_DeliversToFollowersAndRecipient(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(staticFollowers{"bob": {"carol", "dave"}}, tr, 16)
	stop := d.Start(2)

	d.TweetAdded(context.Background(), 7, "bob")
	d.NotificationAdded(context.Background(), "alice")
	stopNow(t, stop)

	require.Len(t, tr.tweets, 1)
	assert.Equal(t, int64(7), tr.tweets[0].tweetID)
	assert.ElementsMatch(t, []string{"carol", "dave"}, tr.tweets[0].recipients)
	assert.Equal(t, []string{"alice"}, tr.notifications)
}

func TestDispatcher_NoFollowersNoPush(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(staticFollowers{}, tr, 16)
	stop := d.Start(1)

	d.TweetAdded(context.Background(), 1, "lonely")
	stopNow(t, stop)

	assert.Empty(t, tr.tweets)
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	tr := &recordingTransport{fail: true}
	d := NewDispatcher(staticFollowers{"bob": {"carol"}}, tr, 16)
	stop := d.Start(1)

	assert.NotPanics(t, func() {
		d.TweetAdded(context.Background(), 1, "bob")
		d.TweetAdded(context.Background(), 2, "broken")
		d.NotificationAdded(context.Background(), "alice")
	})
	stopNow(t, stop)
	assert.Empty(t, tr.tweets)
	assert.Empty(t, tr.notifications)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(staticFollowers{}, tr, 1)

	// 未启动 worker，第二个事件必然被丢弃
	d.NotificationAdded(context.Background(), "a")
	d.NotificationAdded(context.Background(), "b")
	assert.Equal(t, 1, d.QueueLen())

	stop := d.Start(1)
	stopNow(t, stop)
	assert.Equal(t, []string{"a"}, tr.notifications)
}

func TestDispatcher_DropsAfterStop(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(staticFollowers{}, tr, 4)
	stop := d.Start(1)
	stopNow(t, stop)

	d.NotificationAdded(context.Background(), "late")
	assert.Zero(t, d.QueueLen())
	assert.Empty(t, tr.notifications)
}
