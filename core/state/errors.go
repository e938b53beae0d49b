package state

import "errors"

var (
	// ErrNotPointer is returned when the sync target is not a pointer to a struct.
	ErrNotPointer = errors.New("state: target must be a pointer to a struct")
	// ErrModelAlias is returned when camelCase or custom wire names are
	// configured for a model target; its json tags are authoritative.
	ErrModelAlias = errors.New("state: alias configuration is not allowed for model targets, use json tags")
	// ErrIncludeExcludeOverlap is returned when an attribute appears in both
	// the include and exclude sets.
	ErrIncludeExcludeOverlap = errors.New("state: attribute in both include and exclude")
)
