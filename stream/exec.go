package stream

import (
	"context"
	"math"
)

// Unlimited lifts the cap of RunLimit.
const Unlimited = -1

// Compose chains items into one node: the first is lifted with From, each
// following item is subscribed to the previous one. Sending, settling and
// running the result act on the first item; wiring, values and waiting act
// on the last.
func Compose(items ...any) *Node {
	if len(items) == 0 {
		return New(Hooks{})
	}
	head := From(items[0])
	if len(items) == 1 {
		return head
	}
	tail := head
	for _, x := range items[1:] {
		tail = tail.Each(x)
	}
	return composite(head, tail)
}

// Run composes args and starts production at the head without waiting on
// backpressure.
func Run(args ...any) *Node {
	c := Compose(args...)
	c.start(0)
	return c
}

// RunLimit composes args and starts production allowing at most limit items
// whose backpressure has not settled. The head resolves once every item
// settled; the first failed item rejects it. A limit below one is Unlimited.
func RunLimit(limit int, args ...any) *Node {
	c := Compose(args...)
	c.start(weight(limit))
	return c
}

// RunAwait sends the next item only after the previous one settled.
func RunAwait(args ...any) *Node {
	return RunLimit(1, args...)
}

// RunAll sends everything at once and resolves after all of it settled.
func RunAll(args ...any) *Node {
	return RunLimit(Unlimited, args...)
}

// Val runs args and waits for the settled value of the last one.
func Val(ctx context.Context, args ...any) (any, error) {
	return Run(args...).Wait(ctx)
}

func weight(limit int) int64 {
	if limit < 1 {
		return math.MaxInt64
	}
	return int64(limit)
}
