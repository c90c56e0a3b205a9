package events

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/streamparty/stream"
)

// Registry maps (host, channel name) to the nodes listening there, in
// registration order. Hosts are keyed by identity and never modified.
type Registry struct {
	mu    sync.Mutex
	hosts map[any]*hostChannels
}

// hostChannels keys channels by the xxhash of their name alone; two names
// that collide share a channel.
type hostChannels struct {
	order    []*channel
	channels map[uint64]*channel
}

type channel struct {
	key   uint64
	nodes []*stream.Node
}

func NewRegistry() *Registry {
	return &Registry{hosts: map[any]*hostChannels{}}
}

var Default = NewRegistry()

func channelKey(name string) uint64 {
	return xxhash.Sum64String(name)
}

func checkHost(host any) {
	if host == nil {
		panic(fmt.Errorf("%w: nil", ErrHost))
	}
	if t := reflect.TypeOf(host); !t.Comparable() {
		panic(fmt.Errorf("%w: %v is not comparable", ErrHost, t))
	}
}

func (r *Registry) add(host any, name string, n *stream.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hc, ok := r.hosts[host]
	if !ok {
		hc = &hostChannels{channels: map[uint64]*channel{}}
		r.hosts[host] = hc
	}
	k := channelKey(name)
	c, ok := hc.channels[k]
	if !ok {
		c = &channel{key: k}
		hc.channels[k] = c
		hc.order = append(hc.order, c)
	}
	c.nodes = append(c.nodes, n)
}

func (r *Registry) remove(host any, name string, n *stream.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hc, ok := r.hosts[host]
	if !ok {
		return
	}
	c, ok := hc.channels[channelKey(name)]
	if !ok {
		return
	}
	c.nodes = slices.DeleteFunc(c.nodes, func(x *stream.Node) bool { return x == n })
	if len(c.nodes) > 0 {
		return
	}

	delete(hc.channels, c.key)
	hc.order = slices.DeleteFunc(hc.order, func(x *channel) bool { return x == c })
	if len(hc.order) == 0 {
		delete(r.hosts, host)
	}
}

// Listeners returns a copy of the nodes registered on host under the given
// channel names, or under every channel when none is given.
func (r *Registry) Listeners(host any, names ...string) []*stream.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	hc, ok := r.hosts[host]
	if !ok {
		return nil
	}
	var out []*stream.Node
	if len(names) == 0 {
		for _, c := range hc.order {
			out = append(out, c.nodes...)
		}
		return out
	}
	for _, name := range names {
		if c, ok := hc.channels[channelKey(name)]; ok {
			out = append(out, c.nodes...)
		}
	}
	return out
}

// Len is the number of hosts with at least one live channel.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hosts)
}
