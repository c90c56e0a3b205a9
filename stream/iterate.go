package stream

import (
	"context"
	"iter"
	"sync"
)

// Iterator pulls data out of a node one at a time. Production is driven
// with RunAwait semantics: the next datum is produced only after the
// previous one was consumed.
type Iterator struct {
	node *Node
	sink *Node
	wake chan struct{}

	mu    sync.Mutex
	queue []pulled

	cur pulled
	err error
	end bool
}

type pulled struct {
	value, data any
	ack         *Node
}

// Iterate subscribes an iterator to n and starts n if it has not run yet.
func (n *Node) Iterate() *Iterator {
	it := &Iterator{node: n, wake: make(chan struct{}, 1)}
	it.sink = New(Hooks{
		Next: func(_ *Node, value, data any) (any, error) {
			ack := New(Hooks{})
			it.mu.Lock()
			it.queue = append(it.queue, pulled{value: value, data: data, ack: ack})
			it.mu.Unlock()
			it.signal()
			return ack, nil
		},
		Finally: func(*Node) Awaitable {
			it.signal()
			return nil
		},
	})
	n.Each(it.sink)
	n.start(1)
	return it
}

func (it *Iterator) signal() {
	select {
	case it.wake <- struct{}{}:
	default:
	}
}

// Next advances to the next datum. It returns false once the node settled
// and every delivered datum was consumed, or when ctx is done; Err tells
// which.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.end {
		return false
	}
	if it.cur.ack != nil {
		it.cur.ack.Resolve(nil)
		it.cur = pulled{}
	}
	for {
		it.mu.Lock()
		if len(it.queue) > 0 {
			it.cur = it.queue[0]
			it.queue[0] = pulled{}
			it.queue = it.queue[1:]
			it.mu.Unlock()
			return true
		}
		it.mu.Unlock()

		if it.sink.isPublished() {
			it.end = true
			it.err = it.sink.Err()
			return false
		}
		select {
		case <-it.wake:
		case <-it.sink.Done():
		case <-ctx.Done():
			it.end = true
			it.err = ctx.Err()
			return false
		}
	}
}

func (it *Iterator) Value() any { return it.cur.value }
func (it *Iterator) Data() any  { return it.cur.data }
func (it *Iterator) Err() error { return it.err }

// Close ends iteration early by resolving the node.
func (it *Iterator) Close() {
	it.stop(nil)
}

// Fail ends iteration by rejecting the node with err.
func (it *Iterator) Fail(err error) {
	it.stop(err)
}

func (it *Iterator) stop(err error) {
	it.end = true
	if it.cur.ack != nil {
		it.cur.ack.Resolve(nil)
		it.cur = pulled{}
	}
	if err != nil {
		it.node.Reject(err)
		it.err = err
		return
	}
	it.node.Resolve(nil)
}

// All yields every datum of n. A rejection is yielded last as the error.
func (n *Node) All(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		it := n.Iterate()
		for it.Next(ctx) {
			if !yield(it.Value(), nil) {
				it.Close()
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}
