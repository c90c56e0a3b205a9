package stream

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrRejected = errors.New("stream: rejected")
	ErrType     = errors.New("stream: unexpected value type")
	ErrStopped  = errors.New("stream: generator stopped")
)

func typeError[T any](value any) error {
	return fmt.Errorf("%w: want %v, got %T", ErrType, reflect.TypeFor[T](), value)
}

// as converts a datum to T, treating nil as the zero value.
func as[T any](value any) (T, bool) {
	if v, ok := value.(T); ok {
		return v, true
	}
	var zero T
	return zero, value == nil
}
