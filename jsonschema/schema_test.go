package jsonschema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	propschema "github.com/reoring/propschema"
)

func testDocument() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email": propschema.String("email", "Contact address").Rules("required", "email").ToArray(),
			"age":   propschema.Integer("age").Min(0).Max(130).ToArray(),
			"address": propschema.Object("address").
				AddProperty(propschema.String("zip").Pattern(`^[0-9]{5}$`).Required()).
				AddProperty(propschema.String("city")).
				ToArray(),
			"tags": propschema.Array("tags").Items(propschema.String("tag")).ToArray(),
			"kind": propschema.New("kind", propschema.Union(propschema.TagString, propschema.TagNull)).
				Enum("a", "b", nil).
				ToArray(),
		},
		"required": []string{"email"},
	}
}

func TestFromDocument(t *testing.T) {
	s := FromDocument(testDocument())

	assert.Equal(t, Draft2020, s.Schema)
	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"email"}, s.Required)

	email := s.Properties["email"]
	require.NotNil(t, email)
	assert.Equal(t, "email", email.Format)
	assert.Equal(t, "Contact address", email.Description)

	age := s.Properties["age"]
	require.NotNil(t, age.Minimum)
	assert.Equal(t, 0.0, *age.Minimum)
	assert.Equal(t, 130.0, *age.Maximum)

	addr := s.Properties["address"]
	assert.Equal(t, []string{"zip"}, addr.Required)
	assert.Equal(t, `^[0-9]{5}$`, addr.Properties["zip"].Pattern)
	assert.Empty(t, addr.Schema)

	assert.Equal(t, "string", s.Properties["tags"].Items.Type)
	assert.Equal(t, []any{"string", "null"}, s.Properties["kind"].Type)
	assert.Equal(t, []any{"a", "b", nil}, s.Properties["kind"].Enum)
}

func TestFromDocument_DropsRulesAndConditionals(t *testing.T) {
	doc := propschema.String("code").Rules("min:3").RequiredIf("kind", "x").ToArray()
	out, err := json.Marshal(FromDocument(doc))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "rules")
	assert.NotContains(t, string(out), "conditionalRules")
}

func TestCompile(t *testing.T) {
	compiled, err := Compile(FromDocument(testDocument()))
	require.NoError(t, err)

	good := map[string]any{"email": "a@b.com", "age": 30.0, "address": map[string]any{"zip": "12345"}}
	assert.NoError(t, compiled.Validate(good))

	bad := map[string]any{"age": 200.0, "address": map[string]any{}}
	assert.Error(t, compiled.Validate(bad))
}

func TestCompile_RejectsInvalidSchema(t *testing.T) {
	_, err := Compile(&Schema{Type: 42})
	assert.Error(t, err)
}
