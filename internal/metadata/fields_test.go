package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_KeepsInsertionOrder(t *testing.T) {
	f := NewFields()
	f.Set("b", []string{"1"})
	f.Set("a", nil)
	f.Set("c", []string{"x", "y"})
	f.Set("b", []string{"2"})

	assert.Equal(t, []string{"b", "a", "c"}, f.Keys())
	v, ok := f.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{}, v)
	v, _ = f.Get("b")
	assert.Equal(t, []string{"2"}, v)
}

func TestFields_DeleteAndHas(t *testing.T) {
	f := FieldsOf("a", "1", "b", []string{})
	assert.True(t, f.Has("b"))
	assert.True(t, f.Delete("b"))
	assert.False(t, f.Delete("b"))
	assert.False(t, f.Has("b"))
	assert.Equal(t, 1, f.Len())
}

func TestFields_CloneIsDeep(t *testing.T) {
	f := FieldsOf("tags", []string{"a", "b"})
	c := f.Clone()
	v, _ := c.Get("tags")
	v[0] = "z"
	orig, _ := f.Get("tags")
	assert.Equal(t, []string{"a", "b"}, orig)
	assert.True(t, f.Equal(f.Clone()))
}

func TestFields_EqualIsOrderSensitive(t *testing.T) {
	a := FieldsOf("x", "1", "y", "2")
	b := FieldsOf("y", "2", "x", "1")
	assert.False(t, a.Equal(b))
	assert.Equal(t, a.Map(), b.Map())
}

func TestFields_MarshalJSON(t *testing.T) {
	f := FieldsOf("title", "hello", "tags", []string{"a", "b"}, "empty", nil)
	out, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":["hello"],"tags":["a","b"],"empty":[]}`, string(out))
	assert.Equal(t, `{"title":["hello"],"tags":["a","b"],"empty":[]}`, string(out))
}
