package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-portal-gateway/internal/queue"
	apperrors "school-portal-gateway/pkg/errors"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(queue.FromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s:1:token", []byte(`{"token":"abc"}`), time.Minute))
	got, err := store.Get(ctx, "s:1:token")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"abc"}`, string(got))
	assert.Equal(t, time.Minute, mr.TTL("s:1:token"))

	mr.FastForward(time.Minute)
	_, err = store.Get(ctx, "s:1:token")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, store.Del(ctx, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
	require.NoError(t, store.Del(ctx))
}
