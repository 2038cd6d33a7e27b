package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClient(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Now()

	assert.True(t, l.allow("alice", now))
	assert.True(t, l.allow("alice", now))
	assert.False(t, l.allow("alice", now))
	// 不同客户端互不影响
	assert.True(t, l.allow("bob", now))
	// 令牌按速率恢复
	assert.True(t, l.allow("alice", now.Add(time.Second)))
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Now()
	l.allow("alice", now)
	l.allow("bob", now.Add(11*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.visitors["alice"]
	assert.False(t, ok)
	assert.Len(t, l.visitors, 1)
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(0.001, 1).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, want, w.Code, "request %d", i)
	}
}
