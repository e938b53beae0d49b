package session

import "errors"

var (
	// ErrDisconnected is returned by a Socket when the client has gone away.
	ErrDisconnected = errors.New("session: client disconnected")
	// ErrNoTransport is returned when an operation requires a connected transport.
	ErrNoTransport = errors.New("session: no transport attached")
	// ErrNoSession is returned when no Session is bound to the context.
	ErrNoSession = errors.New("session: no session in context")
)
