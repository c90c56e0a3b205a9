package events

import (
	"testing"

	"github.com/delaneyj/streamparty/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelsKeyedByHash(t *testing.T) {
	r := NewRegistry()
	h := &struct{ id int }{}

	a := stream.New(stream.Hooks{})
	b := stream.New(stream.Hooks{})
	r.add(h, "x", a)
	r.add(h, "x", b)

	hc := r.hosts[h]
	require.NotNil(t, hc)
	require.Len(t, hc.channels, 1)
	c := hc.channels[channelKey("x")]
	require.NotNil(t, c)
	assert.Equal(t, []*stream.Node{a, b}, c.nodes)

	r.remove(h, "x", a)
	assert.Equal(t, []*stream.Node{b}, hc.channels[channelKey("x")].nodes)

	r.remove(h, "x", b)
	assert.NotContains(t, hc.channels, channelKey("x"))
	assert.NotContains(t, r.hosts, any(h))
}
