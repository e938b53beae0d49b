package state

import (
	"context"

	"github.com/JoongWonSeo/ws-sync/core/schema"
)

// Synced is a mixin for structs that own their Sync. Embed it, then call
// Init from the constructor:
//
//	type User struct {
//	    state.Synced
//	    Name string
//	}
//
//	func NewUser(ctx context.Context) (*User, error) {
//	    u := &User{Name: "John"}
//	    return u, u.Init(ctx, u, "USER")
//	}
//
// The embedded struct is invisible to attribute observation, so the Sync
// slot never syncs itself.
type Synced struct {
	Sync *Sync `json:"-"`
}

// Init registers self for synchronization and stores the Sync in the mixin
// slot.
func (m *Synced) Init(ctx context.Context, self any, key string, opts ...Option) error {
	s, err := New(ctx, self, key, opts...)
	if err != nil {
		return err
	}
	m.Sync = s
	return nil
}

// Close releases the underlying Sync if initialized.
func (m *Synced) Close() {
	if m.Sync != nil {
		m.Sync.Close()
	}
}

// SyncedCamelCase is a Synced variant that pre-configures camelCase wire
// aliasing for plain targets.
type SyncedCamelCase struct {
	Synced
}

// Init registers self with camelCase aliasing applied before any other
// options.
func (m *SyncedCamelCase) Init(ctx context.Context, self any, key string, opts ...Option) error {
	return m.Synced.Init(ctx, self, key, append([]Option{ToCamelCase()}, opts...)...)
}

// JSONSchema exports a combined schema describing the synced surface of the
// target: the observed state shape plus the kwargs schema of every action
// and task.
func (s *Sync) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.attrs))
	for _, a := range s.attrs {
		props[a.wire] = schema.TypeSchema(a.field.Type)
	}
	if s.taskExposure != "" {
		props[s.taskExposure] = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	}

	out := map[string]any{
		"key": s.key,
		"state": map[string]any{
			"type":       "object",
			"properties": props,
		},
	}

	if len(s.actions) > 0 {
		out["actions"] = callSchemas(s.actions, s.alias)
	}
	if len(s.tasks) > 0 {
		out["tasks"] = callSchemas(s.tasks, s.alias)
	}
	return out
}

func callSchemas(bindings map[string]*remoteBinding, alias schema.AliasFunc) map[string]any {
	out := make(map[string]any, len(bindings))
	for name, b := range bindings {
		if b.codec == nil {
			out[name] = map[string]any{"type": "object", "properties": map[string]any{}}
			continue
		}
		out[name] = b.codec.JSONSchema(alias)
	}
	return out
}
