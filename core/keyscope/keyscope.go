package keyscope

import (
	"context"
	"strings"
)

// Separator joins prefix segments and the base key.
const Separator = "/"

type scopeCtx struct{}

// With pushes a prefix segment onto the scope stack of the returned context.
// Empty segments are elided: the original context is returned unchanged.
func With(ctx context.Context, segment string) context.Context {
	if segment == "" {
		return ctx
	}
	prev := Segments(ctx)
	next := make([]string, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, segment)
	return context.WithValue(ctx, scopeCtx{}, next)
}

// Segments returns the current scope stack, outermost first.
// The returned slice must not be mutated.
func Segments(ctx context.Context) []string {
	if s, ok := ctx.Value(scopeCtx{}).([]string); ok {
		return s
	}
	return nil
}

// Prefix returns the "/"-joined scope stack, or "" when no scope is active.
func Prefix(ctx context.Context) string {
	return strings.Join(Segments(ctx), Separator)
}

// Apply prefixes key with the current scope stack.
// With no active scope the key is returned unchanged.
func Apply(ctx context.Context, key string) string {
	prefix := Prefix(ctx)
	if prefix == "" {
		return key
	}
	return prefix + Separator + key
}
