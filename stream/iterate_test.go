package stream_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delaneyj/streamparty/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterate(t *testing.T) {
	ctx := timeout(t)

	t.Run("drains in order", func(t *testing.T) {
		it := stream.From([]any{1, 2, 3}).Iterate()
		var got []any
		for it.Next(ctx) {
			got = append(got, it.Value())
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []any{1, 2, 3}, got)
	})

	t.Run("data travels along", func(t *testing.T) {
		it := stream.From(map[string]any{"a": 1}).Iterate()
		require.True(t, it.Next(ctx))
		assert.Equal(t, 1, it.Value())
		assert.Equal(t, "a", it.Data())
		assert.False(t, it.Next(ctx))
	})

	t.Run("rejection surfaces", func(t *testing.T) {
		boom := errors.New("boom")
		src := stream.New(stream.Hooks{})
		it := src.Iterate()
		src.Send(1, nil)
		src.Reject(boom)

		require.True(t, it.Next(ctx))
		assert.Equal(t, 1, it.Value())
		assert.False(t, it.Next(ctx))
		assert.ErrorIs(t, it.Err(), boom)
	})

	t.Run("close stops production", func(t *testing.T) {
		var stopped atomic.Bool
		counter := stream.Gen(func(yield stream.Yield) (any, error) {
			for i := 0; ; i++ {
				if _, err := yield(i); err != nil {
					stopped.Store(true)
					return nil, err
				}
			}
		})
		src := stream.From(counter)
		it := src.Iterate()

		var got []any
		for it.Next(ctx) {
			got = append(got, it.Value())
			if len(got) == 2 {
				it.Close()
			}
		}
		assert.Equal(t, []any{0, 1}, got)
		assert.NoError(t, it.Err())
		require.Eventually(t, stopped.Load, time.Second, time.Millisecond)
		assert.Equal(t, stream.Resolved, src.State())
	})

	t.Run("callable source waits for each ack", func(t *testing.T) {
		var sent atomic.Int32
		src := stream.From(func(c stream.Controller) {
			for i := 0; i < 3; i++ {
				c.Send(i, nil)
				sent.Add(1)
			}
			c.Resolve(nil)
		})
		it := src.Iterate()

		require.True(t, it.Next(ctx))
		assert.Equal(t, 0, it.Value())
		assert.Never(t, func() bool { return sent.Load() > 1 }, 50*time.Millisecond, time.Millisecond)

		got := []any{it.Value()}
		for it.Next(ctx) {
			got = append(got, it.Value())
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []any{0, 1, 2}, got)
		assert.Equal(t, int32(3), sent.Load())
	})

	t.Run("fail rejects", func(t *testing.T) {
		boom := errors.New("boom")
		src := stream.From(3)
		it := src.Iterate()
		require.True(t, it.Next(ctx))
		it.Fail(boom)
		assert.False(t, it.Next(ctx))
		assert.ErrorIs(t, it.Err(), boom)
		assert.ErrorIs(t, src.Err(), boom)
	})
}

func TestAll(t *testing.T) {
	ctx := timeout(t)

	t.Run("values", func(t *testing.T) {
		var got []any
		for v, err := range stream.From(3).All(ctx) {
			require.NoError(t, err)
			got = append(got, v)
		}
		assert.Equal(t, []any{0, 1, 2}, got)
	})

	t.Run("break", func(t *testing.T) {
		src := stream.From(100)
		for v := range src.All(ctx) {
			if v == 1 {
				break
			}
		}
		assert.Equal(t, stream.Resolved, src.State())
	})

	t.Run("error last", func(t *testing.T) {
		boom := errors.New("boom")
		src := stream.From(func(c stream.Controller) error {
			c.Send("a", nil)
			return boom
		})
		var (
			got  []any
			errs []error
		)
		for v, err := range src.All(ctx) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			got = append(got, v)
		}
		assert.Equal(t, []any{"a"}, got)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], boom)
	})
}
