package stream

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// source is a pull-style production strategy behind a From node.
type source interface {
	// pull returns the next datum; ok is false once exhausted. prev is the
	// backpressure of the previous datum.
	pull(ctx context.Context, prev Batch) (value, data any, ok bool, err error)
	// result is the resolution once exhausted.
	result() any
	// stop ends production early; err is nil for an early return.
	stop(err error)
	// async sources may block in pull and are driven on their own goroutine.
	async() bool
}

type producer struct {
	node *Node
	src  source
	call func(c Controller)

	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	size   int64
	prev   Batch

	mu      sync.Mutex
	started bool
	halted  bool
}

func produce(src source) *Node {
	n := &Node{}
	p := &producer{node: n, src: src}
	n.prod = p
	n.hooks.Finally = p.teardown
	return n
}

// produceCall wraps a push-style producer. Without a limit it runs inline
// against the node itself; under a limit it runs on its own goroutine and
// sends through the producer, which gates every send on a slot.
func produceCall(call func(c Controller)) *Node {
	n := &Node{}
	p := &producer{node: n, call: call}
	n.prod = p
	n.hooks.Finally = p.teardown
	return n
}

func (p *producer) async() bool {
	return p.src != nil && p.src.async()
}

func (p *producer) start(limit int64) {
	p.mu.Lock()
	if p.halted {
		p.mu.Unlock()
		return
	}
	p.started = true
	if limit > 0 || p.async() {
		p.ctx, p.cancel = context.WithCancel(context.Background())
	}
	if limit > 0 {
		p.size = limit
		p.sem = semaphore.NewWeighted(limit)
	}
	p.mu.Unlock()

	switch {
	case p.call != nil && p.sem == nil:
		p.call(p.node)
	case p.call != nil:
		go p.call(p)
	case p.async():
		go p.loop(false)
	default:
		p.loop(false)
	}
}

// Send waits for a slot and holds it until the datum's backpressure
// settles. Settling the node wakes a waiting Send, which then drops the
// datum.
func (p *producer) Send(value, data any) Batch {
	if p.node.settled() {
		return nil
	}
	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		return nil
	}
	if p.node.settled() {
		p.sem.Release(1)
		return nil
	}
	b := p.node.Send(value, data)
	p.track(b)
	return b
}

// Resolve resolves the node once every in-flight datum has settled.
func (p *producer) Resolve(value any) {
	p.drain(value)
}

func (p *producer) Reject(err error) {
	p.node.Reject(err)
}

func (p *producer) loop(slot bool) {
	for {
		if p.node.settled() {
			if slot {
				p.sem.Release(1)
			}
			p.halt()
			return
		}
		if p.sem != nil && !slot && !p.sem.TryAcquire(1) {
			go p.acquire()
			return
		}
		slot = false

		v, d, ok, err := p.src.pull(p.ctx, p.prev)
		if err != nil || !ok {
			if p.sem != nil {
				p.sem.Release(1)
			}
			if err != nil {
				p.node.Reject(err)
				return
			}
			break
		}
		p.prev = p.node.Send(v, d)
		p.track(p.prev)
	}
	p.finish()
}

func (p *producer) acquire() {
	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		p.halt()
		return
	}
	p.loop(true)
}

// track holds the item's slot until its backpressure settles.
func (p *producer) track(b Batch) {
	if p.sem == nil {
		return
	}
	if b.Settled() {
		if err := b.Err(); err != nil {
			p.node.Reject(err)
		}
		p.sem.Release(1)
		return
	}
	go func() {
		if err := b.Wait(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.node.Reject(err)
		}
		p.sem.Release(1)
	}()
}

func (p *producer) finish() {
	p.drain(p.src.result())
}

// drain resolves with value once every tracked item has settled.
func (p *producer) drain(value any) {
	if p.sem == nil || p.sem.TryAcquire(p.size) {
		if p.sem != nil {
			p.sem.Release(p.size)
		}
		p.node.Resolve(value)
		return
	}
	go func() {
		if err := p.sem.Acquire(p.ctx, p.size); err != nil {
			return
		}
		p.sem.Release(p.size)
		p.node.Resolve(value)
	}()
}

// halt maps an external settlement onto the source.
func (p *producer) halt() {
	p.mu.Lock()
	if p.halted {
		p.mu.Unlock()
		return
	}
	p.halted = true
	p.mu.Unlock()

	var err error
	if State(p.node.state.Load()) == Rejected {
		if err = p.node.settleErr(); err == nil {
			err = ErrRejected
		}
	}
	if p.src != nil {
		p.src.stop(err)
	}
}

func (p *producer) teardown(n *Node) Awaitable {
	p.mu.Lock()
	cancel, started := p.cancel, p.started
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if !started {
		p.halt()
	}
	return nil
}
