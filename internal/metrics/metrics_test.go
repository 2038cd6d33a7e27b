package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	ObserveMutation("retweet", "ok")
	FanoutOutcome("tweet_added", "pushed")
	FanoutRecipients.Add(3)
	FanoutQueueLength.Set(1)
	LiveSessions.Set(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"twitter_mutations_total",
		"twitter_fanout_events_total",
		"twitter_fanout_recipients_total",
		"twitter_fanout_queue_length",
		"twitter_live_sessions",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
