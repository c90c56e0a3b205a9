package stream

// chain composes sources in front of n, so Map(fn, src) is
// Compose(src, Map(fn)).
func chain(n *Node, sources []any) *Node {
	if len(sources) == 0 {
		return n
	}
	items := make([]any, 0, len(sources)+1)
	items = append(items, sources...)
	items = append(items, n)
	return Compose(items...)
}

func Map[In, Out any](fn func(In) Out, sources ...any) *Node {
	return chain(New(Hooks{Next: func(n *Node, value, data any) (any, error) {
		v, ok := as[In](value)
		if !ok {
			return nil, typeError[In](value)
		}
		return n.dispatch(fn(v), data), nil
	}}), sources)
}

// TryMap is Map with a fallible fn. An error rejects the node.
func TryMap[In, Out any](fn func(In) (Out, error), sources ...any) *Node {
	return chain(New(Hooks{Next: func(n *Node, value, data any) (any, error) {
		v, ok := as[In](value)
		if !ok {
			return nil, typeError[In](value)
		}
		out, err := fn(v)
		if err != nil {
			return nil, err
		}
		return n.dispatch(out, data), nil
	}}), sources)
}

func Filter[T any](fn func(T) bool, sources ...any) *Node {
	return chain(New(Hooks{Next: func(n *Node, value, data any) (any, error) {
		v, ok := as[T](value)
		if !ok {
			return nil, typeError[T](value)
		}
		if !fn(v) {
			return nil, nil
		}
		return n.dispatch(value, data), nil
	}}), sources)
}

func Tap[T any](fn func(value T, data any), sources ...any) *Node {
	return chain(New(Hooks{Next: func(n *Node, value, data any) (any, error) {
		v, ok := as[T](value)
		if !ok {
			return nil, typeError[T](value)
		}
		fn(v, data)
		return n.dispatch(value, data), nil
	}}), sources)
}
