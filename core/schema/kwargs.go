package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// KwargsCodec decodes the keyword arguments of a remote action or task call
// into the handler's params struct and validates them. Codecs are cached per
// params type, so every sync instance over the same class shares one codec.
type KwargsCodec struct {
	// Params is the handler's params struct type.
	Params reflect.Type

	fields []Field
}

var (
	kwargsCacheMu sync.RWMutex
	kwargsCache   = map[reflect.Type]*KwargsCodec{}
)

// KwargsFor builds (or returns the cached) codec for a params struct type.
func KwargsFor(params reflect.Type) (*KwargsCodec, error) {
	if params.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: params must be a struct, got %s", ErrInvalidHandler, params)
	}

	kwargsCacheMu.RLock()
	cached, ok := kwargsCache[params]
	kwargsCacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	fields, err := FieldsOf(params)
	if err != nil {
		return nil, err
	}

	c := &KwargsCodec{Params: params, fields: fields}

	kwargsCacheMu.Lock()
	kwargsCache[params] = c
	kwargsCacheMu.Unlock()

	return c, nil
}

// Decode populates a new params struct from kwargs. Each field accepts its
// wire spelling (json tag or alias) as well as its snake_case attribute name.
// After decoding, all `validate` tag rules are applied; absent keys leave the
// zero value, which a "required" rule rejects. Unknown keys are ignored.
func (c *KwargsCodec) Decode(kwargs map[string]json.RawMessage, alias AliasFunc) (reflect.Value, error) {
	out := reflect.New(c.Params).Elem()

	var errs ValidationErrors
	for _, f := range c.fields {
		raw, ok := kwargs[f.WireName(alias)]
		if !ok {
			raw, ok = kwargs[f.Name]
		}
		if ok {
			decoded, err := DecodeAs(raw, f.Type)
			if err != nil {
				errs = append(errs, ValidationError{Field: f.WireName(alias), Message: err.Error()})
				continue
			}
			out.Field(f.Index).Set(decoded)
		}

		if err := ValidateValue(f.WireName(alias), out.Field(f.Index), f.ValidateTag); err != nil {
			if ve := ExtractValidationErrors(err); ve != nil {
				errs = append(errs, ve...)
			} else {
				return reflect.Value{}, err
			}
		}
	}

	if len(errs) > 0 {
		return reflect.Value{}, errs
	}
	return out, nil
}
