package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Serialize converts a Go value to its JSON-native wire shape
// (map[string]any, []any, string, float64, bool, nil). Nested structs
// serialize through their json tags, so model-backed values keep their
// configured aliases.
func Serialize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("schema: serialize: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("schema: serialize: %w", err)
	}
	return out, nil
}

// ReadField serializes the current value of an attribute on target, which
// must be a pointer to the struct the field was resolved on. The round trip
// through JSON doubles as a deep copy, so the result never aliases target
// memory.
func ReadField(target reflect.Value, f Field) (any, error) {
	var v reflect.Value
	if f.Computed {
		v = target.Method(f.GetterIndex).Call(nil)[0]
	} else {
		v = target.Elem().Field(f.Index)
	}
	return Serialize(v.Interface())
}

// AssignField decodes raw into the attribute's type and assigns it on target.
// Type coercion happens via JSON decoding; when validate is set, the field's
// `validate` tag rules are applied to the decoded value before assignment.
// Assigning to a read-only computed attribute returns ErrReadOnly.
func AssignField(target reflect.Value, f Field, raw any, validate bool) error {
	if !f.Writable() {
		return ErrReadOnly
	}

	decoded, err := DecodeAs(raw, f.Type)
	if err != nil {
		return ValidationErrors{{Field: f.Name, Message: err.Error()}}
	}

	if validate && f.ValidateTag != "" {
		if err := ValidateValue(f.Name, decoded, f.ValidateTag); err != nil {
			return err
		}
	}

	if f.Computed {
		target.Method(f.SetterIndex).Call([]reflect.Value{decoded})
		return nil
	}
	target.Elem().Field(f.Index).Set(decoded)
	return nil
}

// DecodeAs converts a JSON-native value (or json.RawMessage) into a new
// value of type t.
func DecodeAs(raw any, t reflect.Type) (reflect.Value, error) {
	data, ok := raw.(json.RawMessage)
	if !ok {
		var err error
		data, err = json.Marshal(raw)
		if err != nil {
			return reflect.Value{}, err
		}
	}

	out := reflect.New(t)
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}
