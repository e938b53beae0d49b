package schema

import (
	"reflect"
	"strconv"
	"strings"
)

// TypeSchema maps a Go type to a JSON Schema fragment.
func TypeSchema(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": TypeSchema(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": "object", "additionalProperties": TypeSchema(t.Elem())}
	case reflect.Struct:
		fields, err := FieldsOf(t)
		if err != nil {
			return map[string]any{}
		}
		props := map[string]any{}
		for _, f := range fields {
			props[f.WireName(nil)] = fieldSchema(f)
		}
		return map[string]any{"type": "object", "properties": props}
	default:
		return map[string]any{}
	}
}

// JSONSchema exports the kwargs object schema of an action or task, with
// property names in their wire spelling and constraints derived from the
// `validate` tags.
func (c *KwargsCodec) JSONSchema(alias AliasFunc) map[string]any {
	props := map[string]any{}
	var required []string

	for _, f := range c.fields {
		wire := f.WireName(alias)
		props[wire] = fieldSchema(f)
		if strings.Contains(f.ValidateTag, "required") {
			required = append(required, wire)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// fieldSchema combines the type schema with tag-derived constraints.
func fieldSchema(f Field) map[string]any {
	s := TypeSchema(f.Type)
	if f.ValidateTag == "" {
		return s
	}

	for _, ruleStr := range strings.Split(f.ValidateTag, ";") {
		name, paramStr, _ := strings.Cut(strings.TrimSpace(ruleStr), ":")
		params := strings.Split(strings.TrimSpace(paramStr), ",")

		switch strings.TrimSpace(name) {
		case "min":
			applyBound(s, params[0], true)
		case "max":
			applyBound(s, params[0], false)
		case "between":
			if len(params) == 2 {
				applyBound(s, params[0], true)
				applyBound(s, params[1], false)
			}
		case "email":
			s["format"] = "email"
		case "regex":
			s["pattern"] = strings.Join(params, ",")
		case "in":
			enum := make([]any, len(params))
			for i, p := range params {
				enum[i] = strings.TrimSpace(p)
			}
			s["enum"] = enum
		}
	}
	return s
}

func applyBound(s map[string]any, raw string, lower bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return
	}
	switch s["type"] {
	case "string":
		s[pick(lower, "minLength", "maxLength")] = int(n)
	case "array":
		s[pick(lower, "minItems", "maxItems")] = int(n)
	case "integer":
		s[pick(lower, "minimum", "maximum")] = int(n)
	case "number":
		s[pick(lower, "minimum", "maximum")] = n
	}
}

func pick(lower bool, min, max string) string {
	if lower {
		return min
	}
	return max
}
