package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedVerdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func TestRedisJSON_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	require.NoError(t, RedisSetJSON(ctx, rdb, "k", cachedVerdict{Allowed: true, Reason: "ok"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	var got cachedVerdict
	found, err := RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedVerdict{Allowed: true, Reason: "ok"}, got)

	require.NoError(t, RedisDel(ctx, rdb, "k"))
	found, err = RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisGetJSON_BadPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, mr.Set("k", "{not json"))

	var got cachedVerdict
	found, err := RedisGetJSON(context.Background(), rdb, "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
