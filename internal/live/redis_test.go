package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	event      string
	tweetID    int64
	recipients []string
}

type recordingTransport struct {
	mu  sync.Mutex
	got []pushed
}

func (r *recordingTransport) PushTweetAdded(_ context.Context, tweetID int64, recipientIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, pushed{event: "tweet_added", tweetID: tweetID, recipients: recipientIDs})
	return nil
}

func (r *recordingTransport) PushNotificationAdded(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, pushed{event: "notification_added", recipients: []string{recipientID}})
	return nil
}

func (r *recordingTransport) snapshot() []pushed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pushed(nil), r.got...)
}

func TestRelay_ForwardsPublishedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	local := &recordingTransport{}
	relay := NewRelay(rdb, "live-events", local)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx, func() { close(ready) }) }()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not subscribe")
	}

	tr := NewRedisTransport(rdb, "live-events")
	require.NoError(t, tr.PushTweetAdded(ctx, 11, []string{"bob", "carol"}))
	require.NoError(t, tr.PushNotificationAdded(ctx, "alice"))

	require.Eventually(t, func() bool { return len(local.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	got := local.snapshot()
	assert.Equal(t, pushed{event: "tweet_added", tweetID: 11, recipients: []string{"bob", "carol"}}, got[0])
	assert.Equal(t, pushed{event: "notification_added", recipients: []string{"alice"}}, got[1])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisTransport_PublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	tr := NewRedisTransport(rdb, "live-events")
	err := tr.PushNotificationAdded(context.Background(), "alice")
	assert.ErrorContains(t, err, "publish notification_added")
}
