package stream

import (
	"fmt"
	"sync/atomic"
)

// Until forwards data until cond is met, then resolves itself with the
// datum that met it. cond is a count, a predicate over the value (and
// data), or an Awaitable whose settlement ends the node. Only the Until
// node settles; its sources keep running.
func Until(cond any, sources ...any) *Node {
	n := &Node{}
	var met func(value, data any) bool
	n.hooks.Next = func(n *Node, value, data any) (any, error) {
		b := n.dispatch(value, data)
		if met != nil && met(value, data) {
			n.Resolve(value)
		}
		return b, nil
	}

	switch c := cond.(type) {
	case int:
		if c <= 0 {
			n.Resolve(nil)
			return chain(n, sources)
		}
		var seen atomic.Int64
		limit := int64(c)
		met = func(any, any) bool {
			return seen.Add(1) >= limit
		}
	case func(any) bool:
		met = func(value, _ any) bool { return c(value) }
	case func(any, any) bool:
		met = c
	case Awaitable:
		if a, ok := c.(*Node); ok {
			a.OnSettle(func(*Node) { n.Resolve(nil) })
		} else {
			go func() {
				<-c.Done()
				n.Resolve(nil)
			}()
		}
	default:
		panic(fmt.Sprintf("stream: unsupported until condition %T", cond))
	}

	return chain(n, sources)
}
