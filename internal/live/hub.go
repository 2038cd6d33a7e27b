package live

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/d60-Lab/twitter-core/internal/fanout"
	"github.com/d60-Lab/twitter-core/internal/metrics"
	"github.com/d60-Lab/twitter-core/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

var ErrHubStopped = errors.New("live hub stopped")

// Hub 本实例上的在线会话表；同一用户可以有多个会话
type Hub struct {
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]map[*session]struct{} // userID -> sessions
	stopped  bool
}

type session struct {
	id        string
	userID    string
	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	closeOnce sync.Once
}

var _ fanout.Transport = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 鉴权已在 HTTP 层完成
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]map[*session]struct{}),
	}
}

// ServeWS 升级连接并为 userID 注册一个会话
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	s := &session{id: uuid.NewString(), userID: userID, conn: conn, send: make(chan []byte, sendBuffer), hub: h}
	if !h.register(s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		_ = conn.Close()
		return ErrHubStopped
	}
	go s.writePump()
	go s.readPump()
	logger.Debug("live session opened", zap.String("user", userID), zap.String("session", s.id))
	return nil
}

func (h *Hub) register(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	set, ok := h.sessions[s.userID]
	if !ok {
		set = make(map[*session]struct{})
		h.sessions[s.userID] = set
	}
	set[s] = struct{}{}
	metrics.LiveSessions.Inc()
	return true
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.userID)
	}
	s.closeSend()
	metrics.LiveSessions.Dec()
}

// PushTweetAdded 只投给本实例上在线的接收者，不在线的直接跳过
func (h *Hub) PushTweetAdded(_ context.Context, tweetID int64, recipientIDs []string) error {
	frame := tweetAddedFrame(tweetID)
	for _, id := range recipientIDs {
		h.deliver(id, fanout.EventTweetAdded, frame)
	}
	return nil
}

func (h *Hub) PushNotificationAdded(_ context.Context, recipientID string) error {
	h.deliver(recipientID, fanout.EventNotificationAdded, notificationAddedFrame())
	return nil
}

func (h *Hub) deliver(userID, event string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions[userID] {
		select {
		case s.send <- frame:
		default:
			// 慢客户端丢帧
			metrics.FanoutOutcome(event, "dropped")
			logger.Warn("live session buffer full, drop frame",
				zap.String("user", userID), zap.String("event", event))
		}
	}
}

// SessionCount 返回 userID 的在线会话数
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Stop 关闭全部会话，之后的连接会被拒绝
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for _, set := range h.sessions {
		for s := range set {
			s.closeSend()
			metrics.LiveSessions.Dec()
		}
	}
	h.sessions = make(map[string]map[*session]struct{})
	logger.Info("live hub stopped")
}

func (s *session) closeSend() {
	s.closeOnce.Do(func() { close(s.send) })
}

// readPump 客户端只发 pong 与关闭帧，其余内容丢弃
func (s *session) readPump() {
	defer func() {
		s.hub.unregister(s)
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("live session read failed",
					zap.String("user", s.userID), zap.String("session", s.id), zap.Error(err))
			}
			return
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
