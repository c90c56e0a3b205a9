package stream_test

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/delaneyj/streamparty/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type future struct {
	done  chan struct{}
	value any
	err   error
}

func (f *future) Done() <-chan struct{} { return f.done }
func (f *future) Err() error            { return f.err }
func (f *future) Value() any            { return f.value }

func TestFrom(t *testing.T) {
	ctx := timeout(t)
	boom := errors.New("boom")

	for _, tc := range []struct {
		name string
		in   any
		init any
		want any
	}{
		{"nil", nil, []any{}, []any{nil}},
		{"scalar", "x", []any{}, []any{"x"}},
		{"range", 4, 0, 6},
		{"negative int", -3, []any{}, []any{-3}},
		{"array", [2]string{"a", "b"}, "", "ab"},
		{"map sorted by key", map[string]int{"b": 2, "a": 1}, []any{}, []any{1, 2}},
		{"seq", slices.Values([]any{"a", "b"}), "", "ab"},
		{"seq2", iter.Seq2[any, any](func(yield func(any, any) bool) {
			if yield("v1", "k1") {
				yield("v2", "k2")
			}
		}), map[string]any{}, map[string]any{"k1": "v1", "k2": "v2"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, err := stream.Val(ctx, tc.in, stream.Reduce(tc.init))
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}

	t.Run("channel", func(t *testing.T) {
		ch := make(chan int, 3)
		ch <- 1
		ch <- 2
		ch <- 3
		close(ch)
		v, err := stream.Val(ctx, ch, stream.Reduce(0))
		require.NoError(t, err)
		assert.Equal(t, 6, v)
	})

	t.Run("channel of any", func(t *testing.T) {
		ch := make(chan any)
		go func() {
			ch <- "a"
			ch <- "b"
			close(ch)
		}()
		v, err := stream.Val(ctx, ch, stream.Reduce(""))
		require.NoError(t, err)
		assert.Equal(t, "ab", v)
	})

	t.Run("awaitable", func(t *testing.T) {
		f := &future{done: make(chan struct{}), value: 42}
		close(f.done)
		src := stream.From(f)
		v, err := stream.Val(ctx, src, stream.Reduce(nil))
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 42, src.Value())
	})

	t.Run("failed awaitable", func(t *testing.T) {
		f := &future{done: make(chan struct{}), err: boom}
		close(f.done)
		_, err := stream.Val(ctx, f)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("controller", func(t *testing.T) {
		src := stream.From(func(c stream.Controller) any {
			c.Send(1, nil)
			c.Send(2, nil)
			return "done"
		})
		v, err := stream.Val(ctx, src, stream.Reduce(0))
		require.NoError(t, err)
		assert.Equal(t, 3, v)
		assert.Equal(t, "done", src.Value())
	})

	t.Run("controller error", func(t *testing.T) {
		_, err := stream.Val(ctx, func(c stream.Controller) error { return boom }, stream.Reduce(0))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("controller follows awaitable", func(t *testing.T) {
		p := stream.New(stream.Hooks{})
		n := stream.From(func(c stream.Controller) any { return p }).Run()
		assert.Equal(t, stream.Pending, n.State())
		p.Resolve("x")
		assert.Equal(t, "x", n.Value())
	})

	t.Run("node is identity", func(t *testing.T) {
		n := stream.New(stream.Hooks{})
		assert.Same(t, n, stream.From(n))
	})
}

func TestFromResolvesAfterLastSend(t *testing.T) {
	var got []any
	src := stream.From([]any{"a", "b"})
	src.Each(func(v, data any) { got = append(got, v, data) })
	src.Run()
	assert.Equal(t, []any{"a", 0, "b", 1}, got)
	assert.Equal(t, stream.Resolved, src.State())
}

func TestFromStopsWhenSettledEarly(t *testing.T) {
	pulled := 0
	seq := func(yield func(any) bool) {
		for i := 0; ; i++ {
			pulled++
			if !yield(i) {
				return
			}
		}
	}
	src := stream.From(seq)
	src.Each(func(v any) {
		if v == 2 {
			src.Resolve(nil)
		}
	})
	src.Run()
	assert.Equal(t, 3, pulled)
	assert.Equal(t, stream.Resolved, src.State())
}
