package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/twitter-core/config"
	"github.com/d60-Lab/twitter-core/internal/fanout"
	"github.com/d60-Lab/twitter-core/internal/model"
	"github.com/d60-Lab/twitter-core/internal/repository"
	"github.com/d60-Lab/twitter-core/internal/service"
	"github.com/d60-Lab/twitter-core/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// countingTransport 只计数，不真正推送
type countingTransport struct {
	tweets        atomic.Int64
	recipients    atomic.Int64
	notifications atomic.Int64
}

func (t *countingTransport) PushTweetAdded(_ context.Context, _ int64, ids []string) error {
	t.tweets.Add(1)
	t.recipients.Add(int64(len(ids)))
	return nil
}

func (t *countingTransport) PushNotificationAdded(context.Context, string) error {
	t.notifications.Add(1)
	return nil
}

// 并发转推同一条推文，校验计数器无丢失更新，并统计提交延迟
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	store := repository.NewStore(db)

	users := envInt("USERS", 200)     // 转推者数量，同时都是作者的粉丝
	perUser := envInt("PER_USER", 5)  // 每人转推次数
	conc := envInt("CONCURRENCY", 16) // 并发 goroutine
	workers := envInt("WORKERS", 4)   // fanout worker

	ctx := context.Background()
	author := &model.User{ID: uuid.NewString()}
	author.Username = "author_" + author.ID[:8]
	author.Email = author.Username + "@example.com"
	if err := store.Users().Create(ctx, author); err != nil {
		panic(err)
	}
	ids := make([]string, users)
	for i := range ids {
		u := &model.User{ID: uuid.NewString()}
		u.Username = "u_" + u.ID[:8]
		u.Email = u.Username + "@example.com"
		if err := store.Users().Create(ctx, u); err != nil {
			panic(err)
		}
		_ = store.Follows().Create(ctx, u.ID, author.ID)
		ids[i] = u.ID
	}

	transport := &countingTransport{}
	dispatcher := fanout.NewDispatcher(store.Follows(), transport, users*perUser*2+16)
	stop := dispatcher.Start(workers)
	svc := service.NewMutationService(store, dispatcher)

	src := must(svc.PostTweet(ctx, author.ID, "hot take"))

	jobs := make(chan string)
	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, users*perUser)
		failures  atomic.Int64
		wg        sync.WaitGroup
	)
	start := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for actor := range jobs {
				st := time.Now()
				if _, err := svc.Retweet(ctx, actor, src.ID); err != nil {
					failures.Add(1)
					continue
				}
				d := time.Since(st)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	for r := 0; r < perUser; r++ {
		for _, id := range ids {
			jobs <- id
		}
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	drainCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := stop(drainCtx); err != nil {
		fmt.Printf("fanout drain incomplete: %v\n", err)
	}

	got := must(store.Tweets().FindByID(ctx, src.ID))
	want := int64(len(latencies))
	fmt.Printf("USERS=%d PER_USER=%d CONCURRENCY=%d WORKERS=%d\n", users, perUser, conc, workers)
	fmt.Printf("Retweets: ok=%d failed=%d elapsed=%v throughput=%.1f/s\n",
		want, failures.Load(), elapsed, float64(want)/elapsed.Seconds())
	var sum time.Duration
	for _, d := range latencies {
		sum += d
	}
	if want > 0 {
		fmt.Printf("Commit latency: avg=%v p95=%v p99=%v\n", sum/time.Duration(want), pct(latencies, 0.95), pct(latencies, 0.99))
	}
	fmt.Printf("Counter: retweet_count=%d expected=%d match=%v\n", got.RetweetCount, want, got.RetweetCount == want)
	fmt.Printf("Fanout: tweet_added=%d recipients=%d notification_added=%d\n",
		transport.tweets.Load(), transport.recipients.Load(), transport.notifications.Load())
	if got.RetweetCount != want {
		os.Exit(1)
	}
}
