package propschema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a    any
		op   string
		b    any
		want bool
	}{
		{10, OpEq, 10, true},
		{10, OpNe, 10, false},
		{10, OpNe, 11, true},
		{15, OpGt, 10, true},
		{10, OpGt, 10, false},
		{10, OpGe, 10, true},
		{9, OpGe, 10, false},
		{5, OpLt, 10, true},
		{10, OpLt, 10, false},
		{10, OpLe, 10, true},
		{11, OpLe, 10, false},
		{json.Number("18"), OpGe, 18, true},
		{17.5, OpLt, 18, true},
		{"b", OpGt, "a", true},
		{"a", OpLe, "a", true},
		{"10", OpEq, 10, false},
		{"10", OpGt, 5, false},
		{nil, OpGt, 5, false},
		{nil, OpEq, nil, true},
		{true, OpEq, true, true},
		{10, "bogus", 10, false},
		{"x", "<>", "y", false},
		{nil, "", nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.a, tt.op, tt.b), "%v %s %v", tt.a, tt.op, tt.b)
	}
}

func TestStrictEqual(t *testing.T) {
	assert.True(t, StrictEqual(1, 1.0))
	assert.True(t, StrictEqual(json.Number("3"), int64(3)))
	assert.False(t, StrictEqual("1", 1))
	assert.False(t, StrictEqual(true, 1))
	assert.True(t, StrictEqual([]any{"a"}, []any{"a"}))
	assert.True(t, StrictEqual(map[string]any{"a": "b"}, map[string]any{"a": "b"}))
	assert.False(t, StrictEqual(nil, ""))
}

func TestRuntimeTag(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *int
	tests := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{nilPtr, "null"},
		{1, "integer"},
		{uint8(1), "integer"},
		{json.Number("1"), "integer"},
		{json.Number("1.5"), "double"},
		{1.0, "double"},
		{"s", "string"},
		{true, "boolean"},
		{[]any{}, "array"},
		{[2]int{}, "array"},
		{map[string]any{}, "object"},
		{nilMap, "object"},
		{struct{}{}, "object"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RuntimeTag(tt.v), "%#v", tt.v)
	}
}

func TestFilled(t *testing.T) {
	for _, v := range []any{nil, "", false, []any{}, map[string]any{}} {
		assert.False(t, Filled(v), "%#v", v)
	}
	for _, v := range []any{"x", "0", true, 0, 0.0, json.Number("0"), 1, -2.5, json.Number("1"), []any{1}, map[string]any{"a": 1}} {
		assert.True(t, Filled(v), "%#v", v)
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.com"))
	assert.True(t, IsEmail("first.last+tag@example.co.jp"))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail("a@"))
	assert.False(t, IsEmail("<a@b.com>"))
	assert.False(t, IsEmail(""))
}
