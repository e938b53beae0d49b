package schema_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoongWonSeo/ws-sync/core/schema"
)

type plainTarget struct {
	FirstName string
	LastName  string
	Age       int

	hidden string //nolint:unused // exercises the unexported skip
}

type modelTarget struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Internal  string `json:"-"`
}

type notepad struct {
	Text string
}

func (n *notepad) Length() int { return len(n.Text) }

type calendar struct {
	Day string
}

func (c *calendar) Size() int     { return len(c.Day) }
func (c *calendar) SetSize(n int) { c.Day = c.Day[:n] }

func TestFieldsOf_Plain(t *testing.T) {
	t.Parallel()

	fields, err := schema.FieldsOf(reflect.TypeOf(&plainTarget{}))
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, "first_name", fields[0].Name)
	assert.Equal(t, "last_name", fields[1].Name)
	assert.Equal(t, "age", fields[2].Name)

	assert.Equal(t, "first_name", fields[0].WireName(schema.Identity))
	assert.Equal(t, "firstName", fields[0].WireName(schema.ToCamel))
}

func TestFieldsOf_ModelTagsWin(t *testing.T) {
	t.Parallel()

	fields, err := schema.FieldsOf(reflect.TypeOf(&modelTarget{}))
	require.NoError(t, err)
	require.Len(t, fields, 2, "json:\"-\" fields are excluded")

	// Tags are authoritative even with a different alias function.
	assert.Equal(t, "firstName", fields[0].WireName(schema.Identity))
	assert.True(t, schema.IsModel(reflect.TypeOf(&modelTarget{})))
	assert.False(t, schema.IsModel(reflect.TypeOf(&plainTarget{})))
}

func TestFieldsOf_NotStruct(t *testing.T) {
	t.Parallel()

	_, err := schema.FieldsOf(reflect.TypeOf(42))
	assert.ErrorIs(t, err, schema.ErrNotStruct)
}

func TestComputedField_ReadOnly(t *testing.T) {
	t.Parallel()

	f, err := schema.ComputedField(reflect.TypeOf(&notepad{}), "Length")
	require.NoError(t, err)

	assert.True(t, f.Computed)
	assert.Equal(t, "length", f.Name)
	assert.False(t, f.Writable())
}

func TestComputedField_WithSetter(t *testing.T) {
	t.Parallel()

	f, err := schema.ComputedField(reflect.TypeOf(&calendar{}), "Size")
	require.NoError(t, err)

	assert.True(t, f.Computed)
	assert.True(t, f.Writable())
}

func TestComputedField_Unknown(t *testing.T) {
	t.Parallel()

	_, err := schema.ComputedField(reflect.TypeOf(&notepad{}), "Nope")
	assert.ErrorIs(t, err, schema.ErrUnknownAttribute)
}
