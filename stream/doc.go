// Package stream provides Node, a single primitive that is at once a future,
// a push stream, a multicast point and a pull iterator.
//
// A node is pending until it resolves or rejects, once. Sending a datum into
// a pending node runs its Next hook, which by default forwards to every child
// in subscription order. Send returns the children's results as one flat
// Batch; awaitable entries in it are the backpressure of that datum.
//
//	v, err := stream.Val(ctx,
//		[]any{1, 2, 3},
//		stream.Map(func(d int) int { return d + 1 }),
//		stream.Filter(func(d int) bool { return d%2 == 1 }),
//		stream.Reduce([]any{}),
//	)
//	// v == []any{3}
//
// Settlement flows downward only. Sending into, or settling, an already
// settled node does nothing.
package stream
