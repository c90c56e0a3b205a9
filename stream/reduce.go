package stream

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
)

type accumulator func(acc, value, data any) (any, error)

// Reduce accumulates every datum into init and forwards the running value.
// The strategy follows the kind of init:
//
//   - numbers of any kind add numeric input, anything else counts as 1;
//     an integer accumulator rejects fractional input with ErrType
//   - strings concatenate
//   - slices append
//   - maps assign each value at its data key
//   - a Generator is resumed with every datum; its yields become the value
//   - a *Node receives every datum and lends its value
//   - anything else keeps the last datum
//
// The node resolves to the accumulated value.
func Reduce(init any, sources ...any) *Node {
	return chain(reducer(init), sources)
}

func ReduceFunc[Acc, In any](fn func(acc Acc, value In, data any) Acc, init Acc, sources ...any) *Node {
	return chain(accumulate(init, func(acc, value, data any) (any, error) {
		a, _ := as[Acc](acc)
		v, ok := as[In](value)
		if !ok {
			return nil, typeError[In](value)
		}
		return fn(a, v, data), nil
	}), sources)
}

func reducer(init any) *Node {
	switch x := init.(type) {
	case *Node:
		return redirect(x)
	case Generator:
		return generate(x)
	case string:
		return accumulate(x, func(acc, value, _ any) (any, error) {
			if s, ok := value.(string); ok {
				return acc.(string) + s, nil
			}
			return acc.(string) + fmt.Sprint(value), nil
		})
	case []any:
		return accumulate(slices.Clone(x), func(acc, value, _ any) (any, error) {
			return append(acc.([]any), value), nil
		})
	case map[string]any:
		return accumulate(maps.Clone(x), func(acc, value, data any) (any, error) {
			m := acc.(map[string]any)
			if k, ok := data.(string); ok {
				m[k] = value
			} else {
				m[fmt.Sprint(data)] = value
			}
			return m, nil
		})
	}

	rv := reflect.ValueOf(init)
	switch {
	case rv.CanInt():
		t := rv.Type()
		return accumulate(init, func(acc, value, _ any) (any, error) {
			inc, err := integral(value)
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(reflect.ValueOf(acc).Int() + inc).Convert(t).Interface(), nil
		})
	case rv.CanUint():
		t := rv.Type()
		return accumulate(init, func(acc, value, _ any) (any, error) {
			inc, err := integral(value)
			if err != nil {
				return nil, err
			}
			if inc < 0 {
				return nil, fmt.Errorf("%w: cannot add %v to %v", ErrType, value, t)
			}
			return reflect.ValueOf(reflect.ValueOf(acc).Uint() + uint64(inc)).Convert(t).Interface(), nil
		})
	case rv.CanFloat():
		t := rv.Type()
		return accumulate(init, func(acc, value, _ any) (any, error) {
			return reflect.ValueOf(reflect.ValueOf(acc).Float() + fractional(value)).Convert(t).Interface(), nil
		})
	}

	switch rv.Kind() {
	case reflect.Slice:
		elem := rv.Type().Elem()
		clone := reflect.AppendSlice(reflect.MakeSlice(rv.Type(), 0, rv.Len()), rv)
		return accumulate(clone.Interface(), func(acc, value, _ any) (any, error) {
			v, err := assignable(value, elem)
			if err != nil {
				return nil, err
			}
			return reflect.Append(reflect.ValueOf(acc), v).Interface(), nil
		})
	case reflect.Map:
		key, elem := rv.Type().Key(), rv.Type().Elem()
		clone := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), iter.Value())
		}
		return accumulate(clone.Interface(), func(acc, value, data any) (any, error) {
			k, err := assignable(data, key)
			if err != nil {
				return nil, err
			}
			v, err := assignable(value, elem)
			if err != nil {
				return nil, err
			}
			reflect.ValueOf(acc).SetMapIndex(k, v)
			return acc, nil
		})
	}

	return accumulate(init, func(_, value, _ any) (any, error) {
		return value, nil
	})
}

func accumulate(init any, fn accumulator) *Node {
	n := &Node{value: init}
	n.hooks = Hooks{
		Next: func(n *Node, value, data any) (any, error) {
			acc, err := fn(n.Value(), value, data)
			if err != nil {
				return nil, err
			}
			n.SetValue(acc)
			return n.dispatch(acc, data), nil
		},
		Resolve: func(n *Node, _ any) (any, error) {
			return n.Value(), nil
		},
	}
	return n
}

func generate(g Generator) *Node {
	n := &Node{}
	finished := false
	n.hooks = Hooks{
		Next: func(n *Node, value, data any) (any, error) {
			v, done, err := g.Next(value)
			if err != nil {
				finished = true
				return nil, err
			}
			n.SetValue(v)
			if done {
				finished = true
				n.Resolve(v)
				return nil, nil
			}
			return n.dispatch(v, data), nil
		},
		Resolve: func(n *Node, value any) (any, error) {
			if finished {
				return n.Value(), nil
			}
			finished = true
			ret, err := g.Return(nil)
			if err != nil {
				return nil, err
			}
			if ret == nil {
				return n.Value(), nil
			}
			return ret, nil
		},
		Reject: func(n *Node, err error) error {
			if finished {
				return err
			}
			finished = true
			if _, gerr := g.Throw(err); gerr != nil {
				return gerr
			}
			return err
		},
	}

	v, done, err := g.Next(nil)
	switch {
	case err != nil:
		finished = true
		n.Reject(err)
	case done:
		finished = true
		n.value = v
		n.Resolve(v)
	default:
		n.value = v
	}
	return n
}

func redirect(target *Node) *Node {
	return New(Hooks{
		Next: func(n *Node, value, data any) (any, error) {
			b := target.Send(value, data)
			v := target.Value()
			n.SetValue(v)
			return append(b, n.dispatch(v, data)...), nil
		},
		Resolve: func(n *Node, value any) (any, error) {
			target.Resolve(value)
			return target.Value(), nil
		},
		Reject: func(n *Node, err error) error {
			target.Reject(err)
			return err
		},
	})
}

// integral is the step an integer accumulator takes for value. Whole floats
// count as their integer value, fractions fail, anything non-numeric is 1.
func integral(value any) (int64, error) {
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return v.Int(), nil
	case v.CanUint():
		return int64(v.Uint()), nil
	case v.CanFloat():
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %v is not a whole number", ErrType, value)
		}
		return int64(f), nil
	}
	return 1, nil
}

func fractional(value any) float64 {
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	return 1
}

func assignable(x any, t reflect.Type) (reflect.Value, error) {
	if x == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(x)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: want %v, got %T", ErrType, t, x)
	}
	return v, nil
}
