package stream

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// From lifts an external producer into a node. Nodes are returned as is.
//
//   - slices and arrays send each element with its index
//   - maps send each value with its key, keys in sorted order
//   - func(Controller), func(Controller) error and func(Controller) any are
//     invoked once when run
//   - a non-negative int n sends the range 0..n-1
//   - iter.Seq, iter.Seq2 and Generator values are pulled lazily
//   - receive channels are drained on their own goroutine until closed
//   - other Awaitable values send their settled value once
//
// Anything else is sent once with nil data.
func From(x any) *Node {
	switch x := x.(type) {
	case *Node:
		return x
	case nil:
		return produce(&singleSource{})
	case []any:
		return produce(&valuesSource{values: x})
	case int:
		if x >= 0 {
			return produce(&rangeSource{n: x})
		}
		return produce(&singleSource{value: x})
	case func(Controller):
		return produceCall(x)
	case func(Controller) error:
		return produceCall(func(c Controller) {
			if err := x(c); err != nil {
				c.Reject(err)
			}
		})
	case func(Controller) any:
		return produceCall(func(c Controller) { settleFrom(c, x(c)) })
	case Generator:
		return produce(&genSource{g: x})
	case iter.Seq[any]:
		return produce(newSeqSource(positional(x)))
	case func(func(any) bool):
		return produce(newSeqSource(positional(x)))
	case iter.Seq2[any, any]:
		return produce(newSeqSource(x))
	case func(func(any, any) bool):
		return produce(newSeqSource(x))
	case <-chan any:
		return produce(&chanSource{ch: x})
	case chan any:
		return produce(&chanSource{ch: x})
	case Awaitable:
		return produce(&awaitSource{a: x})
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return produce(&sliceSource{rv: rv})
	case reflect.Map:
		return produce(newMapSource(rv))
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir != 0 {
			return produce(&reflectChanSource{rv: rv})
		}
	}
	return produce(&singleSource{value: x})
}

func settleFrom(c Controller, r any) {
	switch r := r.(type) {
	case nil:
	case error:
		c.Reject(r)
	case Awaitable:
		follow(c, r)
	default:
		c.Resolve(r)
	}
}

func positional(seq func(func(any) bool)) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		i := 0
		for v := range seq {
			if !yield(v, i) {
				return
			}
			i++
		}
	}
}

type syncSource struct{}

func (syncSource) result() any    { return nil }
func (syncSource) stop(err error) {}
func (syncSource) async() bool    { return false }

type singleSource struct {
	syncSource
	value any
	sent  bool
}

func (s *singleSource) pull(context.Context, Batch) (any, any, bool, error) {
	if s.sent {
		return nil, nil, false, nil
	}
	s.sent = true
	return s.value, nil, true, nil
}

type valuesSource struct {
	syncSource
	values []any
	i      int
}

func (s *valuesSource) pull(context.Context, Batch) (any, any, bool, error) {
	if s.i >= len(s.values) {
		return nil, nil, false, nil
	}
	i := s.i
	s.i++
	return s.values[i], i, true, nil
}

type sliceSource struct {
	syncSource
	rv reflect.Value
	i  int
}

func (s *sliceSource) pull(context.Context, Batch) (any, any, bool, error) {
	if s.i >= s.rv.Len() {
		return nil, nil, false, nil
	}
	i := s.i
	s.i++
	return s.rv.Index(i).Interface(), i, true, nil
}

type mapSource struct {
	syncSource
	rv   reflect.Value
	keys []reflect.Value
	i    int
}

func newMapSource(rv reflect.Value) *mapSource {
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return &mapSource{rv: rv, keys: keys}
}

func (s *mapSource) pull(context.Context, Batch) (any, any, bool, error) {
	if s.i >= len(s.keys) {
		return nil, nil, false, nil
	}
	k := s.keys[s.i]
	s.i++
	return s.rv.MapIndex(k).Interface(), k.Interface(), true, nil
}

type rangeSource struct {
	syncSource
	n, i int
}

func (s *rangeSource) pull(context.Context, Batch) (any, any, bool, error) {
	if s.i >= s.n {
		return nil, nil, false, nil
	}
	i := s.i
	s.i++
	return i, i, true, nil
}

type seqSource struct {
	next   func() (any, any, bool)
	cancel func()
}

func newSeqSource(seq iter.Seq2[any, any]) *seqSource {
	next, stop := iter.Pull2(seq)
	return &seqSource{next: next, cancel: stop}
}

func (s *seqSource) pull(context.Context, Batch) (any, any, bool, error) {
	v, d, ok := s.next()
	if !ok {
		s.cancel()
	}
	return v, d, ok, nil
}

func (s *seqSource) result() any    { return nil }
func (s *seqSource) stop(err error) { s.cancel() }
func (s *seqSource) async() bool    { return false }

type genSource struct {
	g      Generator
	primed bool
	pos    int
	ret    any
}

func (s *genSource) pull(_ context.Context, prev Batch) (any, any, bool, error) {
	var in any
	if s.primed {
		in = prev
	}
	s.primed = true
	v, done, err := s.g.Next(in)
	if err != nil {
		return nil, nil, false, err
	}
	if done {
		s.ret = v
		return nil, nil, false, nil
	}
	i := s.pos
	s.pos++
	return v, i, true, nil
}

func (s *genSource) result() any { return s.ret }

func (s *genSource) stop(err error) {
	if err != nil {
		s.g.Throw(err)
		return
	}
	s.g.Return(nil)
}

func (s *genSource) async() bool { return false }

type chanSource struct {
	ch  <-chan any
	pos int
}

func (s *chanSource) pull(ctx context.Context, _ Batch) (any, any, bool, error) {
	select {
	case v, ok := <-s.ch:
		if !ok {
			return nil, nil, false, nil
		}
		i := s.pos
		s.pos++
		return v, i, true, nil
	case <-ctx.Done():
		return nil, nil, false, nil
	}
}

func (s *chanSource) result() any    { return nil }
func (s *chanSource) stop(err error) {}
func (s *chanSource) async() bool    { return true }

type reflectChanSource struct {
	rv  reflect.Value
	pos int
}

func (s *reflectChanSource) pull(ctx context.Context, _ Batch) (any, any, bool, error) {
	chosen, v, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: s.rv},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	})
	if chosen == 1 || !ok {
		return nil, nil, false, nil
	}
	i := s.pos
	s.pos++
	return v.Interface(), i, true, nil
}

func (s *reflectChanSource) result() any    { return nil }
func (s *reflectChanSource) stop(err error) {}
func (s *reflectChanSource) async() bool    { return true }

type awaitSource struct {
	a     Awaitable
	sent  bool
	value any
}

func (s *awaitSource) pull(ctx context.Context, _ Batch) (any, any, bool, error) {
	if s.sent {
		return nil, nil, false, nil
	}
	select {
	case <-s.a.Done():
	case <-ctx.Done():
		return nil, nil, false, nil
	}
	if err := s.a.Err(); err != nil {
		return nil, nil, false, err
	}
	s.sent = true
	s.value = valueOf(s.a)
	return s.value, nil, true, nil
}

func (s *awaitSource) result() any    { return s.value }
func (s *awaitSource) stop(err error) {}
func (s *awaitSource) async() bool    { return true }
