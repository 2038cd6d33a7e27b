package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		if user == "" {
			http.Error(w, "missing user", http.StatusBadRequest)
			return
		}
		_ = hub.ServeWS(w, r, user)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m Message
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHub_PushTweetAdded(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()
	srv := newTestServer(t, hub)

	bob := dial(t, srv, "bob")
	carol := dial(t, srv, "carol")
	require.Eventually(t, func() bool {
		return hub.SessionCount("bob") == 1 && hub.SessionCount("carol") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.PushTweetAdded(context.Background(), 7, []string{"bob", "carol", "offline"}))

	assert.Equal(t, Message{Type: "tweet_added", TweetID: 7}, readFrame(t, bob))
	assert.Equal(t, Message{Type: "tweet_added", TweetID: 7}, readFrame(t, carol))
}

func TestHub_PushNotificationAddedAllSessions(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()
	srv := newTestServer(t, hub)

	first := dial(t, srv, "alice")
	second := dial(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.SessionCount("alice") == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.PushNotificationAdded(context.Background(), "alice"))

	assert.Equal(t, Message{Type: "notification_added"}, readFrame(t, first))
	assert.Equal(t, Message{Type: "notification_added"}, readFrame(t, second))
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "dave")
	require.Eventually(t, func() bool { return hub.SessionCount("dave") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.SessionCount("dave") == 0 }, 2*time.Second, 10*time.Millisecond)

	// 离线用户推送是空操作
	assert.NoError(t, hub.PushNotificationAdded(context.Background(), "dave"))
}

func TestHub_StopClosesSessions(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "erin")
	require.Eventually(t, func() bool { return hub.SessionCount("erin") == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()
	assert.Zero(t, hub.SessionCount("erin"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway))
}
