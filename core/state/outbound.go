package state

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/wI2L/jsondiff"

	"github.com/JoongWonSeo/ws-sync/pkg/logger"
)

// SyncOption configures one outbound sync call.
type SyncOption func(*syncCall)

type syncCall struct {
	ifSinceLast time.Duration
	toast       string
	severity    ToastSeverity
}

// IfSinceLast throttles the sync: nothing is emitted when the last
// successful emit happened less than d ago.
func IfSinceLast(d time.Duration) SyncOption {
	return func(c *syncCall) {
		c.ifSinceLast = d
	}
}

// WithToast sends a toast notification after the patch is emitted.
func WithToast(message string, severity ToastSeverity) SyncOption {
	return func(c *syncCall) {
		c.toast = message
		c.severity = severity
	}
}

// Sync publishes the target's current state as a minimal JSON-Patch delta
// against the last known client state. Nothing is sent when the state is
// unchanged, the Session is not connected, or the Sync is closed.
func (s *Sync) Sync(ctx context.Context, opts ...SyncOption) error {
	call := syncCall{severity: ToastDefault}
	for _, opt := range opts {
		opt(&call)
	}

	if err := s.emitDelta(ctx, call.ifSinceLast); err != nil {
		return err
	}

	if call.toast != "" {
		s.Toast(ctx, call.toast, call.severity)
	}
	return nil
}

func (s *Sync) emitDelta(ctx context.Context, ifSinceLast time.Duration) error {
	if s.isClosed() || !s.session.IsConnected() {
		return nil
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	now := time.Now()
	if ifSinceLast > 0 && !s.lastSync.IsZero() && now.Sub(s.lastSync) < ifSinceLast {
		return nil
	}

	prev := s.snapshot
	next, err := s.computeSnapshot()
	if err != nil {
		return err
	}
	s.snapshot = next

	patch, err := jsondiff.Compare(prev, next)
	if err != nil {
		return fmt.Errorf("state: diff: %w", err)
	}
	if len(patch) == 0 {
		return nil
	}

	s.session.Send(ctx, PatchEvent(s.key), patch)
	s.lastSync = now
	return nil
}

// Toast sends a user-facing notification and returns the message, so call
// sites can return or log it directly. The message is also logged at the
// level matching its severity.
func (s *Sync) Toast(ctx context.Context, message string, severity ToastSeverity) string {
	switch severity {
	case ToastMessage, ToastInfo, ToastSuccess:
		s.logger.Info(message, logger.Key(s.key))
	case ToastWarning:
		s.logger.Warn(message, logger.Key(s.key))
	case ToastError:
		s.logger.Error(message, logger.Key(s.key))
	default:
		s.logger.Debug(message, logger.Key(s.key))
	}

	s.session.Send(ctx, EventToast, map[string]any{
		"type":    string(severity),
		"message": message,
	})
	return message
}

// SendAction pushes a named action with kwargs to the client.
func (s *Sync) SendAction(ctx context.Context, action map[string]any) {
	s.session.Send(ctx, ActionEvent(s.key), action)
}

// SendBinary pushes binary data with metadata to the client, framed as an
// action on this key.
func (s *Sync) SendBinary(ctx context.Context, metadata map[string]any, data []byte) {
	s.session.SendBinary(ctx, ActionEvent(s.key), metadata, data)
}

// Download sends a file using the legacy base64 download event.
//
// Deprecated: prefer SendBinary, which transfers the payload as a binary
// frame instead of inflating it with base64.
func (s *Sync) Download(ctx context.Context, filename string, data []byte) {
	s.session.Send(ctx, EventDownload, map[string]any{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	})
}
