// Package keyscope provides hierarchical prefixing of sync keys through
// context.Context.
//
// A scope pushes one prefix segment; nested scopes accumulate. The joined
// prefix is applied to every sync key registered while the scope is active,
// so the same component class can be mounted multiple times under distinct
// key namespaces:
//
//	ctx = keyscope.With(ctx, "left")
//	ctx = keyscope.With(ctx, "panel")
//	keyscope.Apply(ctx, "COUNTER") // "left/panel/COUNTER"
//
// Because contexts are immutable and flow along goroutine spawns, concurrent
// goroutines each see exactly the scopes of the context they were started
// with; mutations in one goroutine never leak into another.
package keyscope
