package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCounter(t *testing.T) (*ViewCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewViewCounter(client, time.Hour), mr
}

func TestViewCounter_RecordView(t *testing.T) {
	ctx := context.Background()

	t.Run("Should count a viewer once per window", func(t *testing.T) {
		vc, _ := newTestCounter(t)

		n, err := vc.RecordView(ctx, "q1", "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = vc.RecordView(ctx, "q1", "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = vc.RecordView(ctx, "q1", "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("Should count again after the window expires", func(t *testing.T) {
		vc, mr := newTestCounter(t)

		_, err := vc.RecordView(ctx, "q1", "alice")
		require.NoError(t, err)
		mr.FastForward(time.Hour + time.Second)

		n, err := vc.RecordView(ctx, "q1", "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("Should surface store failures", func(t *testing.T) {
		vc, mr := newTestCounter(t)
		mr.Close()

		_, err := vc.RecordView(ctx, "q1", "alice")
		assert.Error(t, err)
	})
}

func TestViewCounter_Views(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return zero for questions never viewed", func(t *testing.T) {
		vc, _ := newTestCounter(t)

		_, err := vc.RecordView(ctx, "q1", "alice")
		require.NoError(t, err)
		_, err = vc.RecordView(ctx, "q1", "bob")
		require.NoError(t, err)

		got, err := vc.Views(ctx, "q1", "q2")
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"q1": 2, "q2": 0}, got)
	})

	t.Run("Should return an empty map without ids", func(t *testing.T) {
		vc, _ := newTestCounter(t)

		got, err := vc.Views(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
