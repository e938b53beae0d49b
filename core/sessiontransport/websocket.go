package sessiontransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/JoongWonSeo/ws-sync/core/session"
)

// WS adapts a gorilla websocket connection to session.Socket.
// Writes are serialized with a mutex because gorilla connections support at
// most one concurrent writer.
type WS struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWS wraps an upgraded websocket connection.
func NewWS(conn *websocket.Conn) *WS {
	return &WS{conn: conn}
}

// SendJSON writes one text frame containing the JSON encoding of v.
func (w *WS) SendJSON(_ context.Context, v any) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.WriteJSON(v); err != nil {
		return mapCloseError(err)
	}
	return nil
}

// SendBinary writes one binary frame.
func (w *WS) SendBinary(_ context.Context, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return mapCloseError(err)
	}
	return nil
}

// ReceiveJSON reads the next frame, which must be a text frame, and decodes
// it into v.
func (w *WS) ReceiveJSON(_ context.Context, v any) error {
	msgType, data, err := w.conn.ReadMessage()
	if err != nil {
		return mapCloseError(err)
	}
	if msgType != websocket.TextMessage {
		return fmt.Errorf("%w: want text, got %d", ErrUnexpectedFrame, msgType)
	}
	return json.Unmarshal(data, v)
}

// ReceiveBinary reads the next frame, which must be a binary frame.
func (w *WS) ReceiveBinary(_ context.Context) ([]byte, error) {
	msgType, data, err := w.conn.ReadMessage()
	if err != nil {
		return nil, mapCloseError(err)
	}
	if msgType != websocket.BinaryMessage {
		return nil, fmt.Errorf("%w: want binary, got %d", ErrUnexpectedFrame, msgType)
	}
	return data, nil
}

// Close closes the underlying connection.
func (w *WS) Close(_ context.Context) error {
	return w.conn.Close()
}

// mapCloseError translates transport-level closure into the sentinel the
// session receive loop treats as a normal disconnect.
func mapCloseError(err error) error {
	if err == nil {
		return nil
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %w", session.ErrDisconnected, err)
	}
	return err
}
