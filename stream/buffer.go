package stream

import (
	"context"
	"sync"

	"github.com/delaneyj/streamparty/internal/ring"
)

type item struct {
	value, data any
}

type buffering struct {
	out        *Node
	lo         int
	keepNewest bool

	mu       sync.Mutex
	inflight int
	queue    *ring.Ring[item]
	closing  bool
	result   any
}

// Buffer dispatches immediately while fewer than lo items are in flight and
// queues the rest. A non-negative hi caps the queue and drops new arrivals
// once full; a negative hi keeps only the newest -hi queued items. An item
// is in flight until the backpressure of its dispatch settles. Resolution
// waits for the queue to drain.
func Buffer(lo, hi int, sources ...any) *Node {
	if lo < 1 {
		lo = 1
	}
	b := &buffering{out: &Node{}, lo: lo, keepNewest: hi < 0}
	if hi < 0 {
		hi = -hi
	}
	b.queue = ring.New[item](hi)
	intake := New(Hooks{
		Next:    b.next,
		Resolve: b.resolve,
		Reject: func(_ *Node, err error) error {
			b.out.Reject(err)
			return err
		},
	})
	return chain(composite(intake, b.out), sources)
}

func (b *buffering) next(_ *Node, value, data any) (any, error) {
	it := item{value: value, data: data}
	b.mu.Lock()
	if b.inflight < b.lo {
		b.inflight++
		b.mu.Unlock()
		b.run(it)
		return nil, nil
	}
	if b.keepNewest {
		b.queue.Overwrite(it)
	} else {
		b.queue.Offer(it)
	}
	b.mu.Unlock()
	return nil, nil
}

func (b *buffering) run(it item) {
	for {
		res := b.out.Send(it.value, it.data)
		if !res.Settled() {
			go func() {
				_ = res.Wait(context.Background())
				if next, ok := b.release(); ok {
					b.run(next)
				}
			}()
			return
		}
		next, ok := b.release()
		if !ok {
			return
		}
		it = next
	}
}

// release frees a slot and hands back the next queued item, if any, which
// takes that slot over.
func (b *buffering) release() (item, bool) {
	b.mu.Lock()
	b.inflight--
	if it, ok := b.queue.Poll(); ok {
		b.inflight++
		b.mu.Unlock()
		return it, true
	}
	finish := b.closing && b.inflight == 0
	result := b.result
	b.mu.Unlock()
	if finish {
		b.out.Resolve(result)
	}
	return item{}, false
}

func (b *buffering) resolve(_ *Node, value any) (any, error) {
	b.mu.Lock()
	b.closing = true
	b.result = value
	finish := b.inflight == 0
	b.mu.Unlock()
	if finish {
		b.out.Resolve(value)
	}
	return value, nil
}
