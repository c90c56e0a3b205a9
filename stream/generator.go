package stream

import (
	"errors"
	"iter"
)

// Generator is a resumable producer. Next resumes it with input and returns
// the next yielded value, or its return value once done. Return and Throw
// end it early.
type Generator interface {
	Next(input any) (value any, done bool, err error)
	Return(value any) (any, error)
	Throw(err error) (any, error)
}

// Yield suspends a generator with out and hands back the input of the
// following Next. A non-nil error means the consumer stopped or threw; the
// generator should return.
type Yield func(out any) (in any, err error)

type gen struct {
	next    func() (any, bool)
	stop    func()
	input   any
	throw   error
	ret     any
	err     error
	started bool
	done    bool
}

// Gen builds a Generator from fn, which runs as a coroutine between calls.
func Gen(fn func(yield Yield) (any, error)) Generator {
	g := &gen{}
	g.next, g.stop = iter.Pull(func(yield func(any) bool) {
		g.ret, g.err = fn(func(out any) (any, error) {
			if !yield(out) {
				return nil, ErrStopped
			}
			in, err := g.input, g.throw
			g.input, g.throw = nil, nil
			return in, err
		})
	})
	return g
}

func (g *gen) Next(input any) (any, bool, error) {
	if g.done {
		return nil, true, nil
	}
	g.started = true
	g.input = input
	v, ok := g.next()
	if !ok {
		g.done = true
		return g.ret, true, g.err
	}
	return v, false, nil
}

func (g *gen) Return(value any) (any, error) {
	if g.done {
		return value, nil
	}
	g.done = true
	if !g.started {
		g.stop()
		return value, nil
	}
	g.stop()
	if g.err != nil && !errors.Is(g.err, ErrStopped) {
		return nil, g.err
	}
	if g.ret == nil {
		return value, nil
	}
	return g.ret, nil
}

func (g *gen) Throw(err error) (any, error) {
	if g.done || !g.started {
		g.done = true
		g.stop()
		return nil, err
	}
	g.throw = err
	v, ok := g.next()
	if ok {
		return v, nil
	}
	g.done = true
	return g.ret, g.err
}
