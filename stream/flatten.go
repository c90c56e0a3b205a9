package stream

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Flatten runs every received value, lifted with From, into its own output.
// A new inner source resolves the previous one if it is still pending, so
// the latest source wins. The node resolves once its upstream and every
// inner source have settled.
func Flatten(sources ...any) *Node {
	return chain(flattener(nil), sources)
}

// FlatMap is Flatten with fn applied to every value before lifting.
func FlatMap[In any](fn func(In) any, sources ...any) *Node {
	return chain(flattener(func(value any) (any, error) {
		v, ok := as[In](value)
		if !ok {
			return nil, typeError[In](value)
		}
		return fn(v), nil
	}), sources)
}

type flattening struct {
	premap func(value any) (any, error)
	out    *Node
	inners mapset.Set[*Node]

	mu       sync.Mutex
	current  *Node
	upstream bool
	result   any
}

func flattener(premap func(value any) (any, error)) *Node {
	f := &flattening{
		premap: premap,
		out:    &Node{},
		inners: mapset.NewSet[*Node](),
	}
	intake := New(Hooks{
		Next:    f.next,
		Resolve: f.resolve,
		Reject: func(_ *Node, err error) error {
			f.out.Reject(err)
			return err
		},
	})
	return composite(intake, f.out)
}

func (f *flattening) next(_ *Node, value, data any) (any, error) {
	if f.premap != nil {
		var err error
		if value, err = f.premap(value); err != nil {
			return nil, err
		}
	}
	inner := From(value)

	f.mu.Lock()
	prev := f.current
	f.current = inner
	f.mu.Unlock()
	if prev != nil && prev != inner {
		prev.Resolve(nil)
	}

	f.inners.Add(inner)
	inner.OnSettle(f.settled)
	inner.Each(New(Hooks{Next: func(_ *Node, value, data any) (any, error) {
		return f.out.send(value, data), nil
	}}))
	inner.Run()

	if inner.isPublished() {
		return nil, nil
	}
	return inner, nil
}

func (f *flattening) settled(inner *Node) {
	if err := inner.Err(); err != nil {
		f.out.Reject(err)
	}
	f.inners.Remove(inner)
	f.finish()
}

func (f *flattening) resolve(_ *Node, value any) (any, error) {
	f.mu.Lock()
	f.upstream = true
	f.result = value
	f.mu.Unlock()
	f.finish()
	return value, nil
}

func (f *flattening) finish() {
	f.mu.Lock()
	done := f.upstream && f.inners.Cardinality() == 0
	result := f.result
	f.mu.Unlock()
	if done {
		f.out.Resolve(result)
	}
}
