package stream

import (
	"context"
	"sync"
	"sync/atomic"
)

type State uint32

const (
	Pending State = iota
	Resolved
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Batch is the flat result of a send, one entry per child that reported
// something. Entries implementing Awaitable are backpressure the caller may
// wait on.
type Batch []any

// Awaitable is anything that settles once. *Node implements it.
type Awaitable interface {
	Done() <-chan struct{}
	Err() error
}

// Controller is the capability handed to producers.
type Controller interface {
	Send(value, data any) Batch
	Resolve(value any)
	Reject(err error)
}

// Hooks customize a node. A nil hook keeps the default behavior: Next
// forwards to every child, Resolve and Reject pass the outcome through,
// Finally and Run do nothing.
type Hooks struct {
	Next    func(n *Node, value, data any) (any, error)
	Resolve func(n *Node, value any) (any, error)
	Reject  func(n *Node, err error) error
	Finally func(n *Node) Awaitable
	Run     func(n *Node)
}

type Node struct {
	hooks Hooks
	state atomic.Uint32
	ran   atomic.Bool

	mu        sync.Mutex
	published bool
	cascaded  bool
	value     any
	err       error
	children  []*Node
	done      chan struct{}
	observers []func()

	prod *producer

	// composite members, both nil for a primitive node
	head, tail *Node
}

var closedchan = make(chan struct{})

func init() {
	close(closedchan)
}

func New(h Hooks) *Node {
	return &Node{hooks: h}
}

func composite(head, tail *Node) *Node {
	return &Node{head: head, tail: tail}
}

func (n *Node) Send(value, data any) Batch {
	switch r := n.send(value, data).(type) {
	case nil:
		return nil
	case Batch:
		return r
	default:
		return Batch{r}
	}
}

func (n *Node) send(value, data any) any {
	if n.head != nil {
		return n.head.send(value, data)
	}
	if State(n.state.Load()) != Pending {
		return nil
	}
	if n.hooks.Next == nil {
		return n.dispatch(value, data)
	}
	r, err := n.hooks.Next(n, value, data)
	if err != nil {
		n.Reject(err)
		return nil
	}
	if a, ok := r.(Awaitable); ok {
		n.watch(a)
	}
	return r
}

// Dispatch delivers a datum to every child in subscription order and
// returns their results spliced into one Batch.
func (n *Node) Dispatch(value, data any) Batch {
	if n.tail != nil {
		return n.tail.Dispatch(value, data)
	}
	return n.dispatch(value, data)
}

func (n *Node) dispatch(value, data any) Batch {
	n.mu.Lock()
	children := n.children
	n.mu.Unlock()

	var out Batch
	for _, c := range children {
		switch r := c.send(value, data).(type) {
		case nil:
		case Batch:
			out = append(out, r...)
		default:
			out = append(out, r)
		}
	}
	return out
}

// watch rejects n when an awaitable returned by its own Next hook fails.
func (n *Node) watch(a Awaitable) {
	if a == Awaitable(n) {
		return
	}
	if c, ok := a.(*Node); ok {
		c.OnSettle(func(c *Node) {
			if err := c.Err(); err != nil {
				n.Reject(err)
			}
		})
		return
	}
	if isDone(a) {
		if err := a.Err(); err != nil {
			n.Reject(err)
		}
		return
	}
	go func() {
		<-a.Done()
		if err := a.Err(); err != nil {
			n.Reject(err)
		}
	}()
}

func (n *Node) Resolve(value any) {
	if n.head != nil {
		n.head.Resolve(value)
		return
	}
	if !n.state.CompareAndSwap(uint32(Pending), uint32(Resolved)) {
		return
	}
	n.settle(value, nil)
}

func (n *Node) Reject(err error) {
	if n.head != nil {
		n.head.Reject(err)
		return
	}
	if err == nil {
		err = ErrRejected
	}
	if !n.state.CompareAndSwap(uint32(Pending), uint32(Rejected)) {
		return
	}
	n.settle(nil, err)
}

func (n *Node) settle(value any, err error) {
	if err == nil && n.hooks.Resolve != nil {
		if value, err = n.hooks.Resolve(n, value); err != nil {
			n.state.Store(uint32(Rejected))
		}
	}
	if err != nil && n.hooks.Reject != nil {
		if rerr := n.hooks.Reject(n, err); rerr != nil {
			err = rerr
		}
	}

	n.mu.Lock()
	if err == nil {
		n.value = value
	}
	n.err = err
	n.cascaded = true
	children := n.children
	n.mu.Unlock()

	for _, c := range children {
		c.settleWith(value, err)
	}

	var pending Awaitable
	if n.hooks.Finally != nil {
		pending = n.hooks.Finally(n)
	}
	if pending != nil && !isDone(pending) {
		go func() {
			<-pending.Done()
			n.publish()
		}()
		return
	}
	n.publish()
}

func (n *Node) settleWith(value any, err error) {
	if err != nil {
		n.Reject(err)
		return
	}
	n.Resolve(value)
}

func (n *Node) publish() {
	n.mu.Lock()
	n.published = true
	if n.done == nil {
		n.done = closedchan
	} else {
		close(n.done)
	}
	observers := n.observers
	n.observers = nil
	n.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

func (n *Node) settled() bool {
	if n.head != nil {
		return n.head.settled()
	}
	return State(n.state.Load()) != Pending
}

func (n *Node) isPublished() bool {
	if n.tail != nil {
		return n.tail.isPublished()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.published
}

// State reports the settled state once settlement, including Finally, has
// completed.
func (n *Node) State() State {
	if n.tail != nil {
		return n.tail.State()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.published {
		return Pending
	}
	return State(n.state.Load())
}

func (n *Node) Value() any {
	if n.tail != nil {
		return n.tail.Value()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.value
}

// SetValue replaces the observed value. Meant for hooks that accumulate.
func (n *Node) SetValue(v any) {
	if n.tail != nil {
		n.tail.SetValue(v)
		return
	}
	n.mu.Lock()
	n.value = v
	n.mu.Unlock()
}

func (n *Node) Err() error {
	if n.tail != nil {
		return n.tail.Err()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.published {
		return nil
	}
	return n.err
}

// settleErr is the rejection recorded so far, published or not.
func (n *Node) settleErr() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

func (n *Node) Done() <-chan struct{} {
	if n.tail != nil {
		return n.tail.Done()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.done == nil {
		if n.published {
			return closedchan
		}
		n.done = make(chan struct{})
	}
	return n.done
}

// OnSettle calls fn once n has settled, immediately if it already has.
func (n *Node) OnSettle(fn func(n *Node)) {
	t := n
	if n.tail != nil {
		t = n.tail
	}
	t.mu.Lock()
	if t.published {
		t.mu.Unlock()
		fn(n)
		return
	}
	t.observers = append(t.observers, func() { fn(n) })
	t.mu.Unlock()
}

// Wait blocks until n settles or ctx is done. Already settled nodes return
// without blocking.
func (n *Node) Wait(ctx context.Context) (any, error) {
	if n.isPublished() {
		return n.Value(), n.Err()
	}
	select {
	case <-n.Done():
		return n.Value(), n.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (n *Node) Then(fn func(value any) (any, error)) *Node {
	next := New(Hooks{})
	n.OnSettle(func(n *Node) {
		if err := n.Err(); err != nil {
			next.Reject(err)
			return
		}
		v, err := fn(n.Value())
		if err != nil {
			next.Reject(err)
			return
		}
		next.Resolve(v)
	})
	return next
}

func (n *Node) Catch(fn func(err error) (any, error)) *Node {
	next := New(Hooks{})
	n.OnSettle(func(n *Node) {
		err := n.Err()
		if err == nil {
			next.Resolve(n.Value())
			return
		}
		v, err := fn(err)
		if err != nil {
			next.Reject(err)
			return
		}
		next.Resolve(v)
	})
	return next
}

func isDone(a Awaitable) bool {
	if n, ok := a.(*Node); ok {
		return n.isPublished()
	}
	select {
	case <-a.Done():
		return true
	default:
		return false
	}
}

func valueOf(a Awaitable) any {
	if v, ok := a.(interface{ Value() any }); ok {
		return v.Value()
	}
	return nil
}

// follow settles c the way a settles.
func follow(c Controller, a Awaitable) {
	settle := func() {
		if err := a.Err(); err != nil {
			c.Reject(err)
			return
		}
		c.Resolve(valueOf(a))
	}
	if n, ok := a.(*Node); ok {
		n.OnSettle(func(*Node) { settle() })
		return
	}
	go func() {
		<-a.Done()
		settle()
	}()
}

// Settled reports whether every awaitable in b has settled.
func (b Batch) Settled() bool {
	for _, r := range b {
		if a, ok := r.(Awaitable); ok && !isDone(a) {
			return false
		}
	}
	return true
}

// Err returns the first failure among the settled awaitables in b.
func (b Batch) Err() error {
	for _, r := range b {
		if a, ok := r.(Awaitable); ok && isDone(a) {
			if err := a.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b Batch) Wait(ctx context.Context) error {
	for _, r := range b {
		a, ok := r.(Awaitable)
		if !ok {
			continue
		}
		if !isDone(a) {
			select {
			case <-a.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := a.Err(); err != nil {
			return err
		}
	}
	return nil
}
