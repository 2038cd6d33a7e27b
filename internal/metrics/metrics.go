package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_mutations_total",
		Help: "Mutations by operation and result",
	}, []string{"op", "result"})
	FanoutEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitter_fanout_events_total",
		Help: "Live events by kind and outcome (pushed, dropped, failed)",
	}, []string{"event", "outcome"})
	FanoutRecipients = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twitter_fanout_recipients_total",
		Help: "Follower recipients resolved for tweet_added events",
	})
	FanoutQueueLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "twitter_fanout_queue_length",
		Help: "Sampled length of the fan-out dispatch queue",
	})
	LiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "twitter_live_sessions",
		Help: "Connected websocket sessions on this instance",
	})
)

func init() {
	prometheus.MustRegister(Mutations, FanoutEvents, FanoutRecipients, FanoutQueueLength, LiveSessions)
}

// ObserveMutation 按结果分类计数
func ObserveMutation(op, result string) { Mutations.WithLabelValues(op, result).Inc() }

func FanoutOutcome(event, outcome string) { FanoutEvents.WithLabelValues(event, outcome).Inc() }
