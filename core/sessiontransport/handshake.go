package sessiontransport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JoongWonSeo/ws-sync/core/session"
)

// Handshake event names for the optional user/session identification
// protocol.
const (
	// EventRequestUserSession asks the client for its identity.
	EventRequestUserSession = "_REQUEST_USER_SESSION"
	// EventUserSession is the client's identity reply.
	EventUserSession = "_USER_SESSION"
)

// UserSession identifies a client across reconnects and tabs.
type UserSession struct {
	User    string `json:"user"`
	Session string `json:"session"`
}

// RequestUserSession runs the identification handshake on a fresh socket:
// it sends _REQUEST_USER_SESSION and expects a _USER_SESSION reply carrying
// {user, session}. Blank identifiers are replaced with generated UUIDs so a
// first-time client still gets a stable identity to echo back.
//
// The handshake must run before the socket is handed to a Session, since it
// consumes inbound messages directly.
func RequestUserSession(ctx context.Context, sock session.Socket) (UserSession, error) {
	if err := sock.SendJSON(ctx, map[string]any{"type": EventRequestUserSession}); err != nil {
		return UserSession{}, fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}

	var msg session.Message
	if err := sock.ReceiveJSON(ctx, &msg); err != nil {
		return UserSession{}, fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}
	if msg.Type != EventUserSession {
		return UserSession{}, fmt.Errorf("%w: unexpected reply type %q", ErrHandshakeFailed, msg.Type)
	}

	var ids UserSession
	if err := json.Unmarshal(msg.Data, &ids); err != nil {
		return UserSession{}, fmt.Errorf("%w: %w", ErrHandshakeFailed, err)
	}

	if ids.User == "" {
		ids.User = uuid.NewString()
	}
	if ids.Session == "" {
		ids.Session = uuid.NewString()
	}
	return ids, nil
}
