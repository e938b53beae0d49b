// Package schema provides the reflection-driven type facade used by the sync
// engine: per-field (de)serialization codecs, keyword-argument codecs for
// remote actions and tasks, alias generation between Go attribute names and
// wire names, tag-based validation, and JSON Schema export.
//
// All reflection work is performed once per type and cached at package level,
// so constructing many sync instances over the same class stays cheap.
//
// # Attribute model
//
// A synced target is a pointer to a struct. Each exported struct field is an
// attribute; its canonical attribute name is the snake_case form of the Go
// field name. The wire name is the field's json tag when one is present
// (a "model" target, where tags are the authoritative alias configuration),
// otherwise the attribute name passed through the configured alias function.
//
// Computed attributes are nullary single-result methods exposed by name; a
// matching Set<Name> method makes a computed attribute writable.
//
// # Validation
//
// Field and kwargs validation uses `validate` struct tags with rules
// separated by semicolons and parameters by colon:
//
//	type UpdateNameParams struct {
//	    NewName string `json:"newName" validate:"required;min:2;max:50"`
//	}
package schema
