package session

import "context"

// Optional lifecycle hooks for the user-attached state object. A state object
// implements any subset; the Session type-asserts before invoking.

// ConnectHook is invoked after a transport is bound and before the receive
// loop starts. Returning an error aborts the connection.
type ConnectHook interface {
	OnConnect(ctx context.Context, s *Session) error
}

// DisconnectHook is invoked when the receive loop ends, whether by client
// disconnect or by error.
type DisconnectHook interface {
	OnDisconnect(ctx context.Context, s *Session)
}

// TerminateHook is invoked when the Session itself is being destroyed.
type TerminateHook interface {
	OnTerminate(ctx context.Context)
}
