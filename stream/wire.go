package stream

import "fmt"

// Each subscribes the given nodes to n in order and returns the last one.
// Bare callables are lifted to tap nodes whose return value, if any, is
// their backpressure. Nothing is dispatched until something runs or sends.
func (n *Node) Each(nodes ...any) *Node {
	if n.tail != nil {
		return n.tail.Each(nodes...)
	}
	last := n
	for _, x := range nodes {
		c := lift(x)
		n.adopt(c)
		last = c
	}
	return last
}

// Run wires nodes like Each, then fires n's run hook. The hook fires at most
// once per node.
func (n *Node) Run(nodes ...any) *Node {
	if len(nodes) > 0 {
		n.Each(nodes...)
	}
	n.start(0)
	return n
}

func (n *Node) start(limit int64) {
	if n.head != nil {
		n.head.start(limit)
		return
	}
	if !n.ran.CompareAndSwap(false, true) {
		return
	}
	switch {
	case n.prod != nil:
		n.prod.start(limit)
	case n.hooks.Run != nil:
		n.hooks.Run(n)
	}
}

func (n *Node) adopt(c *Node) {
	n.mu.Lock()
	if !n.cascaded {
		n.children = append(n.children, c)
		n.mu.Unlock()
		return
	}
	value, err := n.value, n.err
	n.mu.Unlock()
	c.settleWith(value, err)
}

func lift(x any) *Node {
	switch fn := x.(type) {
	case *Node:
		return fn
	case func(any):
		return New(Hooks{Next: func(n *Node, value, data any) (any, error) {
			fn(value)
			return nil, nil
		}})
	case func(any, any):
		return New(Hooks{Next: func(n *Node, value, data any) (any, error) {
			fn(value, data)
			return nil, nil
		}})
	case func(any) any:
		return New(Hooks{Next: func(n *Node, value, data any) (any, error) {
			return fn(value), nil
		}})
	case func(any, any) any:
		return New(Hooks{Next: func(n *Node, value, data any) (any, error) {
			return fn(value, data), nil
		}})
	default:
		panic(fmt.Sprintf("stream: cannot wire %T as a node", x))
	}
}
