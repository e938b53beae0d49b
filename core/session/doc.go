// Package session provides the per-client connection endpoint of the sync
// runtime.
//
// A Session owns a typed event dispatch table, an ordered list of init
// handlers invoked on every (re)connection, an optional user-attached state
// object with lifecycle hooks, and the transport lifecycle: accepting a new
// socket, running the sequential receive loop, evicting a replaced
// connection, and graceful close.
//
// One Session exists per user session and survives websocket reconnects;
// sync instances register their event handlers against it and the handlers
// keep working across connections.
//
// # Wire protocol
//
// Every message is a JSON object {type: string, data: any}. Binary payloads
// use a preamble message of type "_BIN_META" whose data carries the inner
// event type and metadata, immediately followed by one binary frame; the
// receive loop reassembles {...metadata, data: <bytes>} and dispatches it
// under the inner type.
//
// # Concurrency
//
// Inbound events are processed strictly in arrival order: the receive loop
// waits for each handler to return before reading the next message. Handlers
// therefore run sequentially per Session; long-running work must be spawned
// as a task (see core/state) so the loop keeps draining.
//
// # Context binding
//
// While HandleConnection runs, the Session is bound to the context passed to
// every handler, so code deep inside handlers can reach its Session:
//
//	sess := session.FromContext(ctx)
package session
