// Package state implements the object synchronization engine: it keeps
// server-owned Go objects in sync with remote clients over a Session and
// dispatches client-initiated actions and tasks to server-side handlers.
//
// A Sync observes the attributes of a target object (a pointer to a struct),
// publishes state as minimal JSON-Patch deltas, applies authoritative
// client-side SET/PATCH modifications back onto the target, and exposes
// remote actions (serialized per Session) and remote tasks (concurrent,
// cancellable, at most one per name).
//
// # Registering an object
//
//	type Notepad struct {
//	    Text string
//	    sync *state.Sync // unexported, so not observed
//	}
//
//	func (n *Notepad) ActionClear(ctx context.Context) error {
//	    n.Text = ""
//	    return n.sync.Sync(ctx)
//	}
//
//	notepad.sync, err = state.New(ctx, notepad, "NOTEPAD")
//
// Construction binds the Session from the context (see core/session) and
// applies the current key-scope prefix (see core/keyscope). The Sync owns
// six event handlers in its Session — GET, SET, PATCH, ACTION, TASK_START
// and TASK_CANCEL under its prefixed key — plus one init handler when
// send-on-init is enabled. Close releases all of them; creating sync
// instances with dynamic keys without closing them leaks handler entries.
//
// # Remote actions and tasks
//
// Handlers are discovered by scanning the target's method set for names
// prefixed with Action, Task, and TaskCancel, or registered explicitly with
// the WithAction/WithTask options. A handler takes a context and optionally
// a params struct; params are validated through `validate` tags before the
// handler runs (see core/schema).
//
// Actions run inside the Session's sequential receive loop and therefore
// execute FIFO per connection. Tasks run on their own goroutine and are
// cancelled cooperatively through their context.
package state
