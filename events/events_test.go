package events_test

import (
	"testing"

	"github.com/delaneyj/streamparty/events"
	"github.com/delaneyj/streamparty/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plain struct{ name string }

type listeners map[string][]events.Listener

func (ls listeners) add(name string, l events.Listener) {
	ls[name] = append(ls[name], l)
}

func (ls listeners) remove(name string, l events.Listener) {
	for i, x := range ls[name] {
		if x == l {
			ls[name] = append(ls[name][:i], ls[name][i+1:]...)
			return
		}
	}
}

func (ls listeners) fire(name string, v any) {
	for _, l := range append([]events.Listener(nil), ls[name]...) {
		l.HandleEvent(v)
	}
}

// target follows the AddEventListener convention.
type target struct{ listeners }

func newTarget() *target { return &target{listeners{}} }

func (t *target) AddEventListener(name string, l events.Listener)    { t.add(name, l) }
func (t *target) RemoveEventListener(name string, l events.Listener) { t.remove(name, l) }

// emitter follows the AddListener convention.
type emitter struct{ listeners }

func newEmitter() *emitter { return &emitter{listeners{}} }

func (e *emitter) AddListener(name string, l events.Listener)    { e.add(name, l) }
func (e *emitter) RemoveListener(name string, l events.Listener) { e.remove(name, l) }

func collect(got *[]any) func(any) {
	return func(v any) {
		*got = append(*got, v)
	}
}

func TestRegistryOnlyHost(t *testing.T) {
	r := events.NewRegistry()
	h := &plain{name: "h"}

	var got []any
	n := r.On(h, "x")
	n.Each(collect(&got))

	r.Emit(h, "x", 1, nil)
	r.Emit(h, "y", 2, nil)
	assert.Equal(t, []any{1}, got)
	assert.Equal(t, []*stream.Node{n}, r.Listeners(h, "x"))
	assert.Equal(t, 1, r.Len())

	n.Resolve(nil)
	r.Emit(h, "x", 3, nil)
	assert.Equal(t, []any{1}, got)
	assert.Empty(t, r.Listeners(h, "x"))
	assert.Equal(t, 0, r.Len())
}

func TestNativeHosts(t *testing.T) {
	t.Run("event target", func(t *testing.T) {
		r := events.NewRegistry()
		h := newTarget()

		var got []any
		n := r.On(h, "click")
		n.Each(collect(&got))
		require.Len(t, h.listeners["click"], 1)

		h.fire("click", "a")
		assert.Equal(t, []any{"a"}, got)

		n.Resolve(nil)
		assert.Empty(t, h.listeners["click"])
		h.fire("click", "b")
		assert.Equal(t, []any{"a"}, got)
	})

	t.Run("emitter", func(t *testing.T) {
		r := events.NewRegistry()
		h := newEmitter()

		var got []any
		n := r.On(h, "data")
		n.Each(collect(&got))
		require.Len(t, h.listeners["data"], 1)

		h.fire("data", 1)
		r.Emit(h, "data", 2, nil)
		assert.Equal(t, []any{1, 2}, got)

		n.Reject(nil)
		assert.Empty(t, h.listeners["data"])
		assert.Empty(t, r.Listeners(h))
	})
}

func TestOnce(t *testing.T) {
	r := events.NewRegistry()
	h := newTarget()

	var got []any
	n := r.Once(h, "ready")
	n.Each(collect(&got))

	h.fire("ready", 1)
	h.fire("ready", 2)
	assert.Equal(t, []any{1}, got)
	assert.Equal(t, stream.Resolved, n.State())
	assert.Equal(t, 1, n.Value())
	assert.Empty(t, h.listeners["ready"])
	assert.Zero(t, r.Len())
}

func TestRegistrationOrder(t *testing.T) {
	r := events.NewRegistry()
	h := &plain{}

	var got []any
	a := r.On(h, "x")
	a.Each(func(v any) { got = append(got, "a") })
	b := r.On(h, "y")
	b.Each(func(v any) { got = append(got, "b") })
	c := r.On(h, "x")
	c.Each(func(v any) { got = append(got, "c") })

	r.Emit(h, "x", nil, nil)
	assert.Equal(t, []any{"a", "c"}, got)
	assert.Equal(t, []*stream.Node{a, c, b}, r.Listeners(h))
	assert.Equal(t, []*stream.Node{b, a, c}, r.Listeners(h, "y", "x"))

	a.Resolve(nil)
	assert.Equal(t, []*stream.Node{c, b}, r.Listeners(h))
}

func TestEmitBatch(t *testing.T) {
	r := events.NewRegistry()
	h := &plain{}
	ack := stream.New(stream.Hooks{})

	r.On(h, "x").Each(func(v any) any { return ack })
	r.On(h, "x").Each(func(v any) any { return "done" })

	assert.Equal(t, stream.Batch{ack, "done"}, r.Emit(h, "x", 1, nil))
}

func TestTrailingItems(t *testing.T) {
	r := events.NewRegistry()
	h := &plain{}

	n := r.On(h, "n",
		stream.Map(func(v int) int { return v * 2 }),
		stream.Reduce([]any{}),
	)
	r.Emit(h, "n", 1, nil)
	r.Emit(h, "n", 2, nil)
	assert.Equal(t, []any{2, 4}, n.Value())

	n.Resolve(nil)
	assert.Equal(t, stream.Resolved, n.State())
	assert.Zero(t, r.Len())
}

func TestHostsAreSeparate(t *testing.T) {
	r := events.NewRegistry()
	a, b := &plain{}, &plain{}

	var got []any
	r.On(a, "x").Each(collect(&got))
	r.Emit(b, "x", 1, nil)
	assert.Empty(t, got)
	assert.Nil(t, r.Listeners(b))
}

func TestInvalidHost(t *testing.T) {
	r := events.NewRegistry()
	assert.Panics(t, func() { r.On(nil, "x") })
	assert.Panics(t, func() { r.On([]int{1}, "x") })
}

func TestDefaultRegistry(t *testing.T) {
	h := &plain{}
	var got []any
	n := events.On(h, "x")
	n.Each(collect(&got))

	events.Emit(h, "x", "v", nil)
	assert.Equal(t, []any{"v"}, got)
	assert.Len(t, events.Listeners(h), 1)

	n.Resolve(nil)
	assert.Empty(t, events.Listeners(h))
}
