package ring

// Ring is a fixed capacity FIFO queue. It is not safe for concurrent use.
type Ring[T any] struct {
	buf  []T
	head int
	size int
}

func New[T any](capacity int) *Ring[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Len() int { return r.size }
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Offer appends item, returning false without change when full.
func (r *Ring[T]) Offer(item T) bool {
	if r.size == len(r.buf) {
		return false
	}
	r.buf[(r.head+r.size)%len(r.buf)] = item
	r.size++
	return true
}

// Overwrite appends item, evicting the oldest entry when full. It reports
// whether something was evicted. A zero capacity ring drops item.
func (r *Ring[T]) Overwrite(item T) (evicted bool) {
	if len(r.buf) == 0 {
		return true
	}
	if r.size < len(r.buf) {
		r.Offer(item)
		return false
	}
	r.buf[r.head] = item
	r.head = (r.head + 1) % len(r.buf)
	return true
}

func (r *Ring[T]) Poll() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	item := r.buf[r.head]
	// let the GC have it
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return item, true
}

// Items returns the queued entries oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}
