package fanout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/twitter-core/internal/metrics"
	"github.com/d60-Lab/twitter-core/pkg/logger"
)

type jobKind int

const (
	jobTweetAdded jobKind = iota + 1
	jobNotificationAdded
)

type job struct {
	kind    jobKind
	tweetID int64
	userID  string // tweet_added: 作者；notification_added: 接收者
	enqAt   time.Time
}

// Dispatcher 本地异步投递器：有界队列 + 若干 worker，队列满直接丢弃
type Dispatcher struct {
	followers FollowerResolver
	transport Transport
	ch        chan job
	timeout   time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
}

var _ Publisher = (*Dispatcher)(nil)

func NewDispatcher(followers FollowerResolver, transport Transport, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Dispatcher{
		followers: followers,
		transport: transport,
		ch:        make(chan job, queueSize),
		timeout:   5 * time.Second,
	}
}

// Start 启动 worker；返回的停止函数会先排空队列，最长等到 ctx 结束
func (d *Dispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	d.mu.Lock()
	d.stopCh = make(chan struct{})
	stopCh := d.stopCh
	d.mu.Unlock()

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.loop(stopCh)
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			d.stopped.Store(true)
			close(stopCh)
		})
		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			logger.Warn("fanout dispatcher stop timed out", zap.Int("pending", len(d.ch)))
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) loop(stop <-chan struct{}) {
	defer d.wg.Done()
	for {
		select {
		case j := <-d.ch:
			d.handle(j)
		case <-stop:
			for {
				select {
				case j := <-d.ch:
					d.handle(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) TweetAdded(_ context.Context, tweetID int64, authorID string) {
	d.enqueue(job{kind: jobTweetAdded, tweetID: tweetID, userID: authorID, enqAt: time.Now()})
}

func (d *Dispatcher) NotificationAdded(_ context.Context, userID string) {
	d.enqueue(job{kind: jobNotificationAdded, userID: userID, enqAt: time.Now()})
}

func (d *Dispatcher) enqueue(j job) {
	event := j.kind.event()
	if d.stopped.Load() {
		metrics.FanoutOutcome(event, "dropped")
		logger.Warn("fanout dispatcher stopped, drop event", zap.String("event", event), zap.String("user", j.userID))
		return
	}
	select {
	case d.ch <- j:
		metrics.FanoutQueueLength.Set(float64(len(d.ch)))
	default:
		metrics.FanoutOutcome(event, "dropped")
		logger.Warn("fanout queue full, drop event",
			zap.String("event", event),
			zap.Int64("tweet", j.tweetID),
			zap.String("user", j.userID))
	}
}

func (d *Dispatcher) handle(j job) {
	event := j.kind.event()
	defer func() {
		if r := recover(); r != nil {
			metrics.FanoutOutcome(event, "failed")
			logger.Error("fanout delivery panicked", zap.String("event", event), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var err error
	switch j.kind {
	case jobTweetAdded:
		var ids []string
		ids, err = d.followers.ListFollowerIDs(ctx, j.userID)
		if err == nil && len(ids) > 0 {
			metrics.FanoutRecipients.Add(float64(len(ids)))
			err = d.transport.PushTweetAdded(ctx, j.tweetID, ids)
		}
	case jobNotificationAdded:
		err = d.transport.PushNotificationAdded(ctx, j.userID)
	}
	metrics.FanoutQueueLength.Set(float64(len(d.ch)))
	if err != nil {
		metrics.FanoutOutcome(event, "failed")
		logger.Warn("fanout delivery failed",
			zap.String("event", event),
			zap.Int64("tweet", j.tweetID),
			zap.String("user", j.userID),
			zap.Error(err))
		return
	}
	metrics.FanoutOutcome(event, "pushed")
	logger.Debug("fanout delivered", zap.String("event", event), zap.Duration("latency", time.Since(j.enqAt)))
}

// QueueLen 返回当前队列长度（采样值）
func (d *Dispatcher) QueueLen() int { return len(d.ch) }

func (k jobKind) event() string {
	if k == jobTweetAdded {
		return EventTweetAdded
	}
	return EventNotificationAdded
}
