package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Summary string `json:"summary"`
	HTML    string `json:"html"`
}

func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	var got entry
	assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrMiss)

	want := entry{Summary: "hello", HTML: "<p>hello</p>"}
	require.NoError(t, c.Set(ctx, "view:1", want, time.Minute))
	require.NoError(t, c.Get(ctx, "view:1", &got))
	assert.Equal(t, want, got)

	require.NoError(t, c.Delete(ctx, "view:1", "view:2"))
	assert.ErrorIs(t, c.Get(ctx, "view:1", &got), ErrMiss)
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory(time.Minute, time.Minute))
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1, time.Millisecond))

	time.Sleep(5 * time.Millisecond)
	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrMiss)
}

func TestRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exercise(t, NewRedis(client, "cms"))
}

func TestRedis_PrefixAndTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := NewRedis(client, "cms")

	require.NoError(t, c.Set(context.Background(), "view:7", entry{Summary: "s"}, time.Minute))
	assert.True(t, mr.Exists("cms:view:7"))
	assert.Equal(t, time.Minute, mr.TTL("cms:view:7"))

	mr.FastForward(2 * time.Minute)
	var got entry
	assert.ErrorIs(t, c.Get(context.Background(), "view:7", &got), ErrMiss)
}

func TestDialRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	addr := mr.Addr()
	client, err := DialRedis(context.Background(), addr, "", 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = DialRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
