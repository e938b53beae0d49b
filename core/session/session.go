package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sync"

	"github.com/JoongWonSeo/ws-sync/pkg/logger"
)

// Handler processes one inbound event. The data is the raw JSON of the
// envelope's data field, or a map[string]any carrying {...metadata,
// data: []byte} for reassembled binary events.
type Handler func(ctx context.Context, data any) error

// InitHandler is invoked on every new connection, in registration order.
type InitHandler func(ctx context.Context) error

// Session is the server-side counterpart of one client. It dispatches
// inbound events to registered handlers and multiplexes outbound sends over
// the currently attached transport.
type Session struct {
	mu   sync.Mutex // serializes transport swaps
	conn Socket

	regMu    sync.RWMutex
	handlers map[string]Handler
	inits    []*initEntry

	state  any
	logger *slog.Logger
}

type initEntry struct {
	fn InitHandler
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithState attaches a user state object. If it implements ConnectHook,
// DisconnectHook, or TerminateHook, the hooks fire on the matching lifecycle
// transitions.
func WithState(state any) Option {
	return func(s *Session) {
		s.state = state
	}
}

// New creates a Session with no transport attached.
func New(opts ...Option) *Session {
	s := &Session{
		handlers: make(map[string]Handler),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the attached user state object, or nil.
func (s *Session) State() any { return s.state }

// IsConnected reports whether a transport is currently attached.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// RegisterEvent binds a handler to an event name. A later registration under
// the same name replaces the earlier one; the replace is logged because it
// usually means two sync instances share a key.
func (s *Session) RegisterEvent(event string, h Handler) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	if _, exists := s.handlers[event]; exists {
		s.logger.Warn("replacing existing event handler", logger.Event(event))
	}
	s.handlers[event] = h
}

// DeregisterEvent removes the handler bound to an event name.
// Removing a missing handler is a no-op.
func (s *Session) DeregisterEvent(event string) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	if _, exists := s.handlers[event]; !exists {
		s.logger.Warn("deregistering unknown event handler", logger.Event(event))
		return
	}
	delete(s.handlers, event)
}

// HandlerCount returns the number of registered event handlers.
func (s *Session) HandlerCount() int {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	return len(s.handlers)
}

// RegisterInit appends an init handler and returns a function that removes
// exactly this registration.
func (s *Session) RegisterInit(h InitHandler) (remove func()) {
	entry := &initEntry{fn: h}
	s.regMu.Lock()
	s.inits = append(s.inits, entry)
	s.regMu.Unlock()

	return func() {
		s.regMu.Lock()
		defer s.regMu.Unlock()
		for i, e := range s.inits {
			if e == entry {
				s.inits = append(s.inits[:i], s.inits[i+1:]...)
				return
			}
		}
	}
}

// InitCount returns the number of registered init handlers.
func (s *Session) InitCount() int {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	return len(s.inits)
}

// Init runs all init handlers in registration order.
func (s *Session) Init(ctx context.Context) {
	s.regMu.RLock()
	entries := make([]*initEntry, len(s.inits))
	copy(entries, s.inits)
	s.regMu.RUnlock()

	for _, e := range entries {
		if err := e.fn(ctx); err != nil {
			s.logger.Error("init handler failed", logger.Error(err))
		}
	}
}

// NewConnection attaches a transport. An existing transport is first told
// goodbye with EventDisconnect and closed. Init handlers run afterwards so
// that send-on-init sync instances publish their state to the new client.
func (s *Session) NewConnection(ctx context.Context, sock Socket) {
	s.mu.Lock()
	if s.conn != nil {
		s.logger.Warn("overwriting existing transport")
		s.evictLocked(ctx, DefaultFarewell)
	}
	s.conn = sock
	s.mu.Unlock()

	s.Init(ctx)
}

// Disconnect sends a farewell message, closes the transport, and clears the
// slot. A Session without a transport is left unchanged.
func (s *Session) Disconnect(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(ctx, message)
}

func (s *Session) evictLocked(ctx context.Context, message string) {
	if s.conn == nil {
		return
	}
	if err := s.conn.SendJSON(ctx, envelope{Type: EventDisconnect, Data: message}); err != nil {
		s.logger.Warn("failed to send farewell", logger.Error(err))
	}
	if err := s.conn.Close(ctx); err != nil {
		s.logger.Warn("failed to close transport", logger.Error(err))
	}
	s.conn = nil
}

// Terminate destroys the Session: it disconnects any attached transport and
// fires the state's OnTerminate hook.
func (s *Session) Terminate(ctx context.Context) {
	s.Disconnect(ctx, "")
	if hook, ok := s.state.(TerminateHook); ok {
		hook.OnTerminate(ctx)
	}
}

// Send transmits one {type, data} message. Errors are logged and swallowed:
// a broken client must not abort server state. Without a transport this is a
// no-op.
func (s *Session) Send(ctx context.Context, event string, data any) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	if err := conn.SendJSON(ctx, envelope{Type: event, Data: data}); err != nil {
		s.logger.Warn("failed to send event", logger.Event(event), logger.Error(err))
	}
}

// SendBinary transmits a binary payload for an event: first the EventBinMeta
// preamble carrying the inner event name and metadata, then the binary frame.
func (s *Session) SendBinary(ctx context.Context, event string, metadata map[string]any, data []byte) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	preamble := envelope{Type: EventBinMeta, Data: binMeta{Type: event, Metadata: metadata}}
	if err := conn.SendJSON(ctx, preamble); err != nil {
		s.logger.Warn("failed to send binary preamble", logger.Event(event), logger.Error(err))
		return
	}
	if err := conn.SendBinary(ctx, data); err != nil {
		s.logger.Warn("failed to send binary frame", logger.Event(event), logger.Error(err))
	}
}

// HandleConnection binds the given transport (or keeps the current one) and
// runs the receive loop until the client disconnects. The Session is bound
// to the context passed to every handler. Inbound events are dispatched
// strictly sequentially: each handler finishes before the next message is
// read.
func (s *Session) HandleConnection(ctx context.Context, sock Socket) error {
	s.mu.Lock()
	if sock != nil {
		s.conn = sock
	}
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNoTransport
	}

	ctx = WithContext(ctx, s)

	defer func() {
		if hook, ok := s.state.(DisconnectHook); ok {
			hook.OnDisconnect(ctx, s)
		}
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		_ = conn.Close(ctx)
	}()

	if hook, ok := s.state.(ConnectHook); ok {
		if err := hook.OnConnect(ctx, s); err != nil {
			return err
		}
	}

	for {
		var msg Message
		if err := conn.ReceiveJSON(ctx, &msg); err != nil {
			if errors.Is(err, ErrDisconnected) || errors.Is(err, context.Canceled) {
				s.logger.Debug("client disconnected")
				return nil
			}
			s.logger.Error("error while receiving", logger.Error(err))
			return err
		}

		event, data, err := s.reassemble(ctx, conn, msg)
		if err != nil {
			s.logger.Error("error while reading binary frame", logger.Error(err))
			return err
		}

		s.regMu.RLock()
		handler, ok := s.handlers[event]
		s.regMu.RUnlock()
		if !ok {
			s.logger.Warn("no handler for event", logger.Event(event))
			continue
		}

		if err := handler(ctx, data); err != nil {
			s.logger.Error("event handler failed", logger.Event(event), logger.Error(err))
		}
	}
}

// reassemble resolves the effective event and data of one inbound message.
// For EventBinMeta it reads the follow-on binary frame and merges it with
// the preamble metadata as {...metadata, data: bytes}.
func (s *Session) reassemble(ctx context.Context, conn Socket, msg Message) (string, any, error) {
	if msg.Type != EventBinMeta {
		return msg.Type, json.RawMessage(msg.Data), nil
	}

	var meta binMeta
	if err := json.Unmarshal(msg.Data, &meta); err != nil {
		return "", nil, err
	}

	frame, err := conn.ReceiveBinary(ctx)
	if err != nil {
		return "", nil, err
	}

	merged := maps.Clone(meta.Metadata)
	if merged == nil {
		merged = make(map[string]any, 1)
	}
	merged["data"] = frame
	return meta.Type, merged, nil
}
