package state_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JoongWonSeo/ws-sync/core/keyscope"
	"github.com/JoongWonSeo/ws-sync/core/session"
	"github.com/JoongWonSeo/ws-sync/core/session/sessiontest"
)

// harness wires a Session to a fake socket and provides the bound context
// that sync constructors expect.
type harness struct {
	sess *session.Session
	sock *sessiontest.Socket
	ctx  context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sess := session.New()
	sock := sessiontest.New()
	sess.NewConnection(context.Background(), sock)
	return &harness{
		sess: sess,
		sock: sock,
		ctx:  session.WithContext(context.Background(), sess),
	}
}

// run starts the receive loop and stops it when the test ends.
func (h *harness) run(t *testing.T) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- h.sess.HandleConnection(context.Background(), h.sock)
	}()
	t.Cleanup(func() {
		h.sock.Disconnect()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("receive loop did not stop")
		}
	})
}

// newConnectedSocket attaches a fresh fake socket to the session, running
// its init handlers.
func newConnectedSocket(t *testing.T, sess *session.Session) *sessiontest.Socket {
	t.Helper()
	sock := sessiontest.New()
	sess.NewConnection(context.Background(), sock)
	return sock
}

// send queues one inbound event.
func (h *harness) send(event string, data any) {
	h.sock.QueueJSON(map[string]any{"type": event, "data": data})
}

// ctxScoped returns the session-bound context with one key-scope segment.
func (h *harness) ctxScoped(segment string) context.Context {
	return keyscope.With(h.ctx, segment)
}

// sendRaw queues one inbound event with a verbatim JSON data payload,
// preserving key order.
func (h *harness) sendRaw(event string, dataJSON string) {
	h.sock.QueueJSON(json.RawMessage(fmt.Sprintf(`{"type":%q,"data":%s}`, event, dataJSON)))
}

// waitSent waits until at least n messages of the event type were sent and
// returns them.
func (h *harness) waitSent(t *testing.T, event string, n int) []sessiontest.Sent {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.sock.SentOf(event)) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d %s messages", n, event)
	return h.sock.SentOf(event)
}
