// Package wssync keeps server-owned Go objects synchronized with remote
// clients over a persistent bidirectional message channel, typically a
// WebSocket.
//
// The module is organized into focused packages:
//
//   - core/session: per-client connection endpoint and event dispatch
//   - core/state: the sync engine (snapshots, deltas, actions, tasks)
//   - core/keyscope: hierarchical key prefixing through contexts
//   - core/schema: reflection facade, codecs, validation, schema export
//   - core/sessiontransport: websocket adapter and identity handshake
//
// This root package re-exports the types most applications touch, so simple
// uses need a single import:
//
//	sess := wssync.NewSession()
//	ctx := session.WithContext(ctx, sess)
//	sync, err := wssync.NewSync(ctx, obj, "KEY")
package wssync

import (
	"context"

	"github.com/JoongWonSeo/ws-sync/core/session"
	"github.com/JoongWonSeo/ws-sync/core/state"
)

// Session is the per-client connection endpoint.
type Session = session.Session

// Sync keeps one object synchronized with a client.
type Sync = state.Sync

// Synced is the mixin embedding a Sync slot into a domain struct.
type Synced = state.Synced

// SyncedCamelCase is the camelCase-aliasing mixin variant.
type SyncedCamelCase = state.SyncedCamelCase

// NewSession creates a Session with no transport attached.
func NewSession(opts ...session.Option) *Session {
	return session.New(opts...)
}

// NewSync registers target for synchronization under key, bound to the
// Session carried by ctx.
func NewSync(ctx context.Context, target any, key string, opts ...state.Option) (*Sync, error) {
	return state.New(ctx, target, key, opts...)
}
