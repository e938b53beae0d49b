package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Field describes one observable attribute of a synced type: either an
// exported struct field or a computed attribute backed by a getter method.
type Field struct {
	// GoName is the Go field or method name.
	GoName string
	// Name is the canonical snake_case attribute name.
	Name string
	// JSONTag is the name part of the json tag, "" when absent.
	JSONTag string
	// Index is the struct field index; -1 for computed attributes.
	Index int
	// Type is the attribute's value type.
	Type reflect.Type
	// ValidateTag holds the raw `validate` tag.
	ValidateTag string
	// Computed marks attributes backed by a getter method.
	Computed bool
	// GetterIndex is the method index of the getter; -1 otherwise.
	GetterIndex int
	// SetterIndex is the method index of the matching Set<GoName> method; -1 if read-only.
	SetterIndex int
}

// WireName resolves the field's name on the wire. A json tag is authoritative
// (model semantics); otherwise the alias function is applied to the attribute
// name.
func (f Field) WireName(alias AliasFunc) string {
	if f.JSONTag != "" {
		return f.JSONTag
	}
	if alias == nil {
		return f.Name
	}
	return alias(f.Name)
}

// Writable reports whether the attribute can be assigned to.
func (f Field) Writable() bool {
	return !f.Computed || f.SetterIndex >= 0
}

var (
	fieldCacheMu sync.RWMutex
	fieldCache   = map[reflect.Type][]Field{}
)

// FieldsOf returns the exported struct fields of t (a struct type or pointer
// to struct) in declaration order, excluding fields tagged json:"-".
// Results are cached per type.
func FieldsOf(t reflect.Type) ([]Field, error) {
	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrNotStruct, t)
	}

	fieldCacheMu.RLock()
	cached, ok := fieldCache[st]
	fieldCacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	fields := make([]Field, 0, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}

		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}

		fields = append(fields, Field{
			GoName:      sf.Name,
			Name:        ToSnake(sf.Name),
			JSONTag:     tag,
			Index:       i,
			Type:        sf.Type,
			ValidateTag: sf.Tag.Get("validate"),
			GetterIndex: -1,
			SetterIndex: -1,
		})
	}

	fieldCacheMu.Lock()
	fieldCache[st] = fields
	fieldCacheMu.Unlock()

	return fields, nil
}

// ComputedField resolves a computed attribute on t (a pointer-to-struct type)
// by getter method name. The getter must take no arguments and return exactly
// one value; a method Set<name> taking that value makes the attribute
// writable.
func ComputedField(t reflect.Type, getterName string) (Field, error) {
	m, ok := t.MethodByName(getterName)
	if !ok {
		return Field{}, fmt.Errorf("%w: no method %s on %s", ErrUnknownAttribute, getterName, t)
	}
	// NumIn includes the receiver.
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return Field{}, fmt.Errorf("%w: computed attribute %s must be a nullary single-result method", ErrInvalidHandler, getterName)
	}

	f := Field{
		GoName:      getterName,
		Name:        ToSnake(getterName),
		Index:       -1,
		Type:        m.Type.Out(0),
		Computed:    true,
		GetterIndex: m.Index,
		SetterIndex: -1,
	}

	if setter, ok := t.MethodByName("Set" + getterName); ok {
		if setter.Type.NumIn() == 2 && setter.Type.In(1) == f.Type {
			f.SetterIndex = setter.Index
		}
	}

	return f, nil
}

// IsModel reports whether a type declares json tags on any of its observable
// fields. For model types the tags are the authoritative wire aliasing and
// custom per-field wire names are rejected.
func IsModel(t reflect.Type) bool {
	fields, err := FieldsOf(t)
	if err != nil {
		return false
	}
	for _, f := range fields {
		if f.JSONTag != "" {
			return true
		}
	}
	return false
}
