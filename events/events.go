// Package events lifts named event channels on arbitrary host values into
// stream nodes.
//
// Hosts exposing AddEventListener/RemoveEventListener or
// AddListener/RemoveListener get a native listener for as long as the node
// is pending; any other host is served by the registry alone through Emit.
package events

import (
	"errors"

	"github.com/delaneyj/streamparty/stream"
)

var ErrHost = errors.New("events: invalid host")

// Listener receives native events.
type Listener interface {
	HandleEvent(value any)
}

type EventTarget interface {
	AddEventListener(name string, l Listener)
	RemoveEventListener(name string, l Listener)
}

type Emitter interface {
	AddListener(name string, l Listener)
	RemoveListener(name string, l Listener)
}

type adapter interface {
	add(name string, l Listener)
	remove(name string, l Listener)
}

type targetAdapter struct{ t EventTarget }

func (a targetAdapter) add(name string, l Listener)    { a.t.AddEventListener(name, l) }
func (a targetAdapter) remove(name string, l Listener) { a.t.RemoveEventListener(name, l) }

type emitterAdapter struct{ e Emitter }

func (a emitterAdapter) add(name string, l Listener)    { a.e.AddListener(name, l) }
func (a emitterAdapter) remove(name string, l Listener) { a.e.RemoveListener(name, l) }

func probe(host any) adapter {
	switch h := host.(type) {
	case EventTarget:
		return targetAdapter{h}
	case Emitter:
		return emitterAdapter{h}
	default:
		return nil
	}
}

type listener struct {
	node *stream.Node
}

func (l *listener) HandleEvent(value any) {
	l.node.Send(value, nil)
}

// On registers a node for name on host. Settling the node unregisters it,
// natively and from the registry. Trailing items are chained after it.
func (r *Registry) On(host any, name string, trailing ...any) *stream.Node {
	return r.listen(host, name, false, trailing)
}

// Once is On that resolves after the first event.
func (r *Registry) Once(host any, name string, trailing ...any) *stream.Node {
	return r.listen(host, name, true, trailing)
}

// Emit sends value to every node registered for name on host, in
// registration order.
func (r *Registry) Emit(host any, name string, value, data any) stream.Batch {
	var out stream.Batch
	for _, n := range r.Listeners(host, name) {
		out = append(out, n.Send(value, data)...)
	}
	return out
}

func (r *Registry) listen(host any, name string, once bool, trailing []any) *stream.Node {
	checkHost(host)
	native := probe(host)
	l := &listener{}

	hooks := stream.Hooks{
		Finally: func(n *stream.Node) stream.Awaitable {
			r.remove(host, name, n)
			if native != nil {
				native.remove(name, l)
			}
			return nil
		},
	}
	if once {
		hooks.Next = func(n *stream.Node, value, data any) (any, error) {
			b := n.Dispatch(value, data)
			n.Resolve(value)
			return b, nil
		}
	}
	n := stream.New(hooks)
	l.node = n

	r.add(host, name, n)
	if native != nil {
		native.add(name, l)
	}
	if len(trailing) == 0 {
		return n
	}
	return stream.Compose(append([]any{n}, trailing...)...)
}

func On(host any, name string, trailing ...any) *stream.Node {
	return Default.On(host, name, trailing...)
}

func Once(host any, name string, trailing ...any) *stream.Node {
	return Default.Once(host, name, trailing...)
}

func Emit(host any, name string, value, data any) stream.Batch {
	return Default.Emit(host, name, value, data)
}

func Listeners(host any, names ...string) []*stream.Node {
	return Default.Listeners(host, names...)
}
