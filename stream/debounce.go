package stream

import (
	"sync"
	"time"
)

type debouncer struct {
	wait time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	value any
	data  any
}

// Debounce forwards the latest datum once no new one has arrived for wait.
// Settling the node drops the pending datum.
func Debounce(wait time.Duration, sources ...any) *Node {
	d := &debouncer{wait: wait}
	return chain(New(Hooks{Next: d.next, Finally: d.stop}), sources)
}

func (d *debouncer) next(n *Node, value, data any) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value, d.data = value, data
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		value, data := d.value, d.data
		d.timer = nil
		d.mu.Unlock()
		if !n.settled() {
			n.dispatch(value, data)
		}
	})
	return nil, nil
}

func (d *debouncer) stop(*Node) Awaitable {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return nil
}
