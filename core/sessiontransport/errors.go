package sessiontransport

import "errors"

var (
	// ErrUnexpectedFrame is returned when the frame type on the wire does not
	// match the expected one (e.g. a binary frame where JSON was expected).
	ErrUnexpectedFrame = errors.New("sessiontransport: unexpected frame type")
	// ErrHandshakeFailed is returned when the user-session handshake does not
	// complete with a valid _USER_SESSION reply.
	ErrHandshakeFailed = errors.New("sessiontransport: user session handshake failed")
)
