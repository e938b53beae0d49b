// Package sessiontest provides an in-memory Socket double for testing code
// built on core/session without a real websocket.
package sessiontest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/JoongWonSeo/ws-sync/core/session"
)

// Sent records one outbound JSON message.
type Sent struct {
	// Type is the wire event name of the envelope.
	Type string
	// Data is the decoded data field.
	Data any
	// Raw is the full marshaled envelope.
	Raw json.RawMessage
}

// Socket is an in-memory session.Socket. Inbound messages are queued with
// QueueJSON/QueueBinary; outbound messages are recorded and can be inspected
// with Sent/SentBinary. Disconnect unblocks a pending receive with
// session.ErrDisconnected, ending a receive loop the way a closing client
// would.
type Socket struct {
	mu       sync.Mutex
	sent     []Sent
	sentBin  [][]byte
	incoming chan json.RawMessage
	binary   chan []byte
	done     chan struct{}
	closed   bool
}

// New creates a fake socket with room for queued inbound messages.
func New() *Socket {
	return &Socket{
		incoming: make(chan json.RawMessage, 64),
		binary:   make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// QueueJSON enqueues an inbound message, marshaling v to JSON.
func (s *Socket) QueueJSON(v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("sessiontest: queue: %v", err))
	}
	s.incoming <- raw
}

// QueueBinary enqueues an inbound binary frame.
func (s *Socket) QueueBinary(data []byte) {
	s.binary <- data
}

// Disconnect simulates the client going away: pending and future receives
// fail with session.ErrDisconnected.
func (s *Socket) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// SendJSON records the outbound message.
func (s *Socket) SendJSON(_ context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var env struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return session.ErrDisconnected
	}
	s.sent = append(s.sent, Sent{Type: env.Type, Data: env.Data, Raw: raw})
	return nil
}

// SendBinary records the outbound binary frame.
func (s *Socket) SendBinary(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return session.ErrDisconnected
	}
	s.sentBin = append(s.sentBin, data)
	return nil
}

// ReceiveJSON blocks until a queued message, disconnect, or context
// cancellation.
func (s *Socket) ReceiveJSON(ctx context.Context, v any) error {
	select {
	case raw := <-s.incoming:
		return json.Unmarshal(raw, v)
	case <-s.done:
		return session.ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReceiveBinary blocks until a queued binary frame, disconnect, or context
// cancellation.
func (s *Socket) ReceiveBinary(ctx context.Context) ([]byte, error) {
	select {
	case data := <-s.binary:
		return data, nil
	case <-s.done:
		return nil, session.ErrDisconnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close marks the socket closed.
func (s *Socket) Close(_ context.Context) error {
	s.Disconnect()
	return nil
}

// Sent returns a snapshot of all recorded outbound messages.
func (s *Socket) Sent() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sent))
	copy(out, s.sent)
	return out
}

// SentOf returns the recorded outbound messages of one event type.
func (s *Socket) SentOf(eventType string) []Sent {
	var out []Sent
	for _, m := range s.Sent() {
		if m.Type == eventType {
			out = append(out, m)
		}
	}
	return out
}

// SentBinary returns a snapshot of all recorded binary frames.
func (s *Socket) SentBinary() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sentBin))
	copy(out, s.sentBin)
	return out
}
