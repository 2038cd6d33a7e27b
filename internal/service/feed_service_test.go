package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/twitter-core/internal/testutil"
)

func TestFeedService_UnknownHandle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tweets, err := f.feed.ListTweetsByUser(ctx, "nobody", "")
	require.NoError(t, err)
	assert.NotNil(t, tweets)
	assert.Empty(t, tweets)

	favs, err := f.feed.ListFavoritesByUser(ctx, "nobody", "")
	require.NoError(t, err)
	assert.NotNil(t, favs)
	assert.Empty(t, favs)
}

func TestFeedService_NewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := base
	f := newFixture(t, WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
	testutil.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.mut.PostTweet(ctx, "alice", text)
		require.NoError(t, err)
	}

	tweets, err := f.feed.ListTweetsByUser(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, tweets, 3)
	assert.Equal(t, "three", tweets[0].Text)
	assert.Equal(t, "two", tweets[1].Text)
	assert.Equal(t, "one", tweets[2].Text)
}

func TestFeedService_ViewerFlags(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "alice")
	testutil.SeedUser(t, f.db, "bob")
	testutil.SeedUser(t, f.db, "carol")
	ctx := context.Background()

	liked, err := f.mut.PostTweet(ctx, "alice", "liked")
	require.NoError(t, err)
	_, err = f.mut.PostTweet(ctx, "alice", "ignored")
	require.NoError(t, err)
	require.NoError(t, f.mut.AddFavorite(ctx, "bob", liked.ID))

	flags := func(viewer string) map[int64]bool {
		tweets, err := f.feed.ListTweetsByUser(ctx, "alice", viewer)
		require.NoError(t, err)
		out := make(map[int64]bool, len(tweets))
		for _, tw := range tweets {
			out[tw.ID] = tw.IsFavoriteToViewer
		}
		return out
	}

	bobView := flags("bob")
	assert.True(t, bobView[liked.ID])
	assert.Equal(t, 1, countTrue(bobView))

	assert.Zero(t, countTrue(flags("carol")))
	assert.Zero(t, countTrue(flags("")))
}

func TestFeedService_FavoritesFlagFollowsViewer(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "alice")
	testutil.SeedUser(t, f.db, "bob")
	testutil.SeedUser(t, f.db, "carol")
	ctx := context.Background()

	tw, err := f.mut.PostTweet(ctx, "alice", "shared")
	require.NoError(t, err)
	require.NoError(t, f.mut.AddFavorite(ctx, "bob", tw.ID))

	// 列的是 bob 的收藏，标记却按 carol 计算
	favs, err := f.feed.ListFavoritesByUser(ctx, "bob", "carol")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, tw.ID, favs[0].ID)
	assert.False(t, favs[0].IsFavoriteToViewer)

	require.NoError(t, f.mut.AddFavorite(ctx, "carol", tw.ID))

	favs, err = f.feed.ListFavoritesByUser(ctx, "bob", "carol")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.True(t, favs[0].IsFavoriteToViewer)
	assert.EqualValues(t, 2, favs[0].SharedCount)

	favs, err = f.feed.ListFavoritesByUser(ctx, "bob", "")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.False(t, favs[0].IsFavoriteToViewer)
}

func TestFeedService_GetTweet(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "alice")
	ctx := context.Background()

	src, err := f.mut.PostTweet(ctx, "alice", "hello")
	require.NoError(t, err)

	view, err := f.feed.GetTweet(ctx, src.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hello", view.Text)
	assert.Equal(t, "alice", view.AuthorUsername)
	assert.False(t, view.IsFavoriteToViewer)

	_, err = f.feed.GetTweet(ctx, src.ID+100, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func countTrue(m map[int64]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
