package schema

import (
	"errors"
	"strings"
)

var (
	// ErrNotStruct is returned when a target is not a pointer to a struct.
	ErrNotStruct = errors.New("schema: target must be a pointer to a struct")
	// ErrReadOnly is returned when assigning to a computed attribute without a setter.
	ErrReadOnly = errors.New("schema: attribute is read-only")
	// ErrUnknownAttribute is returned when an attribute name does not resolve on the target.
	ErrUnknownAttribute = errors.New("schema: unknown attribute")
	// ErrInvalidHandler is returned when a remote handler has an unsupported signature.
	ErrInvalidHandler = errors.New("schema: invalid handler signature")
)

// ValidationError describes a single failed validation rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates all failed rules for one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ExtractValidationErrors unwraps err into ValidationErrors, or nil when err
// is not a validation failure.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
