package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/JoongWonSeo/ws-sync/core/schema"
	"github.com/JoongWonSeo/ws-sync/pkg/logger"
)

// sendState re-snapshots and pushes the full state. Registered as the init
// handler when send-on-init is enabled.
func (s *Sync) sendState(ctx context.Context) error {
	s.stateMu.Lock()
	snap, err := s.computeSnapshot()
	if err != nil {
		s.stateMu.Unlock()
		return err
	}
	s.snapshot = snap
	s.stateMu.Unlock()

	s.session.Send(ctx, SetEvent(s.key), snap)
	return nil
}

// handleGet answers a _GET with the full freshly snapshotted state.
func (s *Sync) handleGet(ctx context.Context, _ any) error {
	return s.sendState(ctx)
}

// handleSet applies a full-state replace. Values are assigned in the order
// the keys appear in the received JSON object, so a writable computed
// attribute set together with its dependencies resolves sequentially (last
// write wins per attribute). Read-only computed attributes are skipped.
func (s *Sync) handleSet(ctx context.Context, data any) error {
	raw, ok := data.(json.RawMessage)
	if !ok {
		return fmt.Errorf("state: SET expects a JSON object, got %T", data)
	}

	keys, values, err := decodeOrdered(raw)
	if err != nil {
		return err
	}

	for _, wire := range keys {
		if wire == s.taskExposure {
			continue
		}
		if err := s.assignWire(wire, values[wire]); err != nil {
			return err
		}
	}

	var snap map[string]any
	if err := json.Unmarshal(raw, &snap); err != nil {
		return err
	}
	s.stateMu.Lock()
	s.snapshot = snap
	s.stateMu.Unlock()
	return nil
}

// handlePatch applies a JSON-Patch to the snapshot and re-assigns every
// top-level attribute the patch touched, in operation order.
func (s *Sync) handlePatch(ctx context.Context, data any) error {
	raw, ok := data.(json.RawMessage)
	if !ok {
		return fmt.Errorf("state: PATCH expects a JSON-Patch array, got %T", data)
	}

	patch, err := jsonpatch.DecodePatch([]byte(raw))
	if err != nil {
		return fmt.Errorf("state: decode patch: %w", err)
	}

	s.stateMu.Lock()
	doc, err := json.Marshal(s.snapshot)
	if err != nil {
		s.stateMu.Unlock()
		return err
	}
	patched, err := patch.Apply(doc)
	if err != nil {
		s.stateMu.Unlock()
		return fmt.Errorf("state: apply patch: %w", err)
	}
	var snap map[string]any
	if err := json.Unmarshal(patched, &snap); err != nil {
		s.stateMu.Unlock()
		return err
	}
	s.snapshot = snap
	s.stateMu.Unlock()

	for _, wire := range touchedKeys(raw) {
		if wire == s.taskExposure {
			continue
		}
		value, present := snap[wire]
		if !present {
			// The patch removed the whole attribute; nothing to assign.
			continue
		}
		if err := s.assignWire(wire, value); err != nil {
			return err
		}
	}
	return nil
}

// assignWire validates and assigns one received value onto the target.
func (s *Sync) assignWire(wire string, value any) error {
	attr, ok := s.byWire[wire]
	if !ok {
		return fmt.Errorf("%w: %s on %s", schema.ErrUnknownAttribute, wire, s.key)
	}

	err := schema.AssignField(s.targetV, attr.field, value, s.validateOnSet)
	if errors.Is(err, schema.ErrReadOnly) {
		s.logger.Debug("skipping read-only attribute", logger.Key(s.key), slog.String("attribute", attr.field.Name))
		return nil
	}
	return err
}

// decodeOrdered parses a JSON object preserving its key order.
func decodeOrdered(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("state: expected JSON object, got %v", tok)
	}

	var keys []string
	values := map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}

		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = value
	}

	return keys, values, nil
}

// touchedKeys extracts the top-level snapshot keys addressed by a JSON-Patch
// document, in operation order, deduplicated keeping the first occurrence.
func touchedKeys(raw json.RawMessage) []string {
	var ops []struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil
	}

	seen := map[string]bool{}
	var keys []string
	for _, op := range ops {
		path := strings.TrimPrefix(op.Path, "/")
		top, _, _ := strings.Cut(path, "/")
		// JSON-Pointer unescaping, RFC 6901 order: ~1 then ~0.
		top = strings.ReplaceAll(top, "~1", "/")
		top = strings.ReplaceAll(top, "~0", "~")
		if top == "" || seen[top] {
			continue
		}
		seen[top] = true
		keys = append(keys, top)
	}
	return keys
}
