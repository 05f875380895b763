package propschema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToArray(t *testing.T) {
	p := Number("price", "Unit price").
		Default(9.5).
		Format("decimal").
		Min(0).
		Max(100).
		Rules("required", "numeric").
		Reference("#/defs/price").
		AddAttribute("title", "Price")

	assert.Equal(t, map[string]any{
		"name":        "price",
		"type":        "number",
		"description": "Unit price",
		"default":     9.5,
		"format":      "decimal",
		"minimum":     0.0,
		"maximum":     100.0,
		"$ref":        "#/defs/price",
		"required":    true,
		"rules":       []string{"required", "numeric"},
		"title":       "Price",
	}, p.ToArray())
}

func TestToArray_NestedAndUnion(t *testing.T) {
	p := Object("profile").
		AddProperty(String("nick").Pattern(`^\w+$`)).
		AddRawProperty("meta", map[string]any{"type": "object", "x-ui": "hidden"})
	tags := Array("tags").Items(New("tag", Union(TagString, TagNull)))
	p.AddProperty(tags)

	doc := p.ToArray()
	props := doc[KeyProperties].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "pattern": `^\w+$`}, props["nick"])
	assert.Equal(t, map[string]any{"type": "object", "x-ui": "hidden"}, props["meta"])
	assert.Equal(t, map[string]any{"type": []any{"string", "null"}}, props["tags"].(map[string]any)[KeyItems])
	_, hasRequired := doc[KeyRequired]
	assert.False(t, hasRequired)
}

func TestToArray_AttributesWin(t *testing.T) {
	p := String("s").AddAttribute("type", "custom")
	assert.Equal(t, "custom", p.ToArray()["type"])
}

func TestFromArray_RoundTrip(t *testing.T) {
	p := Object("company", "Company details").
		Rules("required").
		AddProperty(String("email").Rules("email").Default("a@b.com")).
		AddProperty(Array("phones").Items(String("phone").Pattern(`^\+?[0-9 ]+$`))).
		RequiredIf("is_business", true).
		WhenCompare("employees", OpGt, 10, "required").
		WhenMatches("country", `^DE$`, "required").
		When(map[string]any{"kind": "gmbh"}, nil, "required").
		RequiredWith("vat").
		AddAttribute("x-order", 3)

	doc := p.ToArray()
	q, err := FromArray("", doc)
	require.NoError(t, err)
	assert.Equal(t, doc, q.ToArray())
	assert.True(t, q.IsRequired())
	assert.Equal(t, "company", q.Name())
}

func TestFromArray_DecodedJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": ["integer", "null"],
		"minimum": 1,
		"rules": ["required", "nullable"],
		"conditionalRules": [
			{"kind": "field_equal", "field": "plan", "value": "pro", "rules": ["max:100"]}
		],
		"x-widget": "slider"
	}`), &doc))

	p, err := FromArray("seats", doc)
	require.NoError(t, err)
	assert.Equal(t, "seats", p.Name())
	assert.True(t, p.Type().IsUnion())
	assert.True(t, p.IsNullable())
	assert.True(t, p.IsRequired())
	assert.True(t, p.Validate(nil, nil))
	assert.False(t, p.Validate(0, nil))
	w, _ := p.Attribute("x-widget")
	assert.Equal(t, "slider", w)
	crs := p.ConditionalRules()
	require.Len(t, crs, 1)
	assert.Equal(t, "pro", crs[0].Value)
}

func TestFromArray_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"missing type", map[string]any{}},
		{"unknown type", map[string]any{"type": "date"}},
		{"bad description", map[string]any{"type": "string", "description": 1}},
		{"bad minimum", map[string]any{"type": "number", "minimum": "1"}},
		{"bad pattern", map[string]any{"type": "string", "pattern": "("}},
		{"properties on string", map[string]any{"type": "string", "properties": map[string]any{}}},
		{"items on object", map[string]any{"type": "object", "items": map[string]any{"type": "string"}}},
		{"closure rule", map[string]any{"type": "string", "conditionalRules": []any{
			map[string]any{"kind": "closure", "closure": true, "rules": []any{"required"}},
		}}},
		{"unknown kind", map[string]any{"type": "string", "conditionalRules": []any{
			map[string]any{"kind": "sometimes", "rules": []any{"required"}},
		}}},
		{"rules not strings", map[string]any{"type": "string", "rules": []any{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromArray("f", tt.doc)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestType_ParseAndMarshal(t *testing.T) {
	single, err := ParseType("string")
	require.NoError(t, err)
	assert.False(t, single.IsUnion())
	assert.Equal(t, "string", single.String())

	union, err := ParseType([]string{"integer", "null", "integer"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{TagInteger, TagNull}, union.Tags())
	assert.Equal(t, TagInteger, union.Primary())

	b, err := json.Marshal(union)
	require.NoError(t, err)
	assert.Equal(t, `["integer","null"]`, string(b))

	var back Type
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, union, back)

	_, err = ParseType(3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParseType([]any{"string", 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, TagNull, New("n", Single(TagNull)).Type().Primary())
}
