package rules

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	propschema "github.com/reoring/propschema"
)

func tokens(list ...string) []propschema.FieldRule {
	out := make([]propschema.FieldRule, len(list))
	for i, tok := range list {
		out[i] = propschema.Token(tok)
	}
	return out
}

func evaluate(t *testing.T, table propschema.RuleTable, record map[string]any) propschema.Result {
	t.Helper()
	res, err := New().Evaluate(propschema.Input{Rules: table, Record: record})
	require.NoError(t, err)
	return res
}

func TestEvaluate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		rules  []string
		record map[string]any
		valid  bool
	}{
		{"required present", []string{"required"}, map[string]any{"f": "x"}, true},
		{"required missing", []string{"required"}, map[string]any{}, false},
		{"required blank", []string{"required"}, map[string]any{"f": "  "}, false},
		{"required empty list", []string{"required"}, map[string]any{"f": []any{}}, false},
		{"required false is a value", []string{"required"}, map[string]any{"f": false}, true},
		{"required zero is a value", []string{"required"}, map[string]any{"f": 0}, true},
		{"absent skips non implicit", []string{"email", "min:3"}, map[string]any{}, true},
		{"blank skips non implicit", []string{"email"}, map[string]any{"f": ""}, true},
		{"null checked without nullable", []string{"string"}, map[string]any{"f": nil}, false},
		{"nullable skips null", []string{"nullable", "string"}, map[string]any{"f": nil}, true},
		{"string", []string{"string"}, map[string]any{"f": 1}, false},
		{"integer", []string{"integer"}, map[string]any{"f": json.Number("3")}, true},
		{"integer string", []string{"integer"}, map[string]any{"f": "42"}, true},
		{"integer float", []string{"integer"}, map[string]any{"f": 1.5}, false},
		{"numeric string", []string{"numeric"}, map[string]any{"f": "1.5"}, true},
		{"numeric word", []string{"numeric"}, map[string]any{"f": "one"}, false},
		{"boolean", []string{"boolean"}, map[string]any{"f": "1"}, true},
		{"boolean word", []string{"boolean"}, map[string]any{"f": "yes"}, false},
		{"array", []string{"array"}, map[string]any{"f": map[string]any{"a": 1}}, true},
		{"array scalar", []string{"array"}, map[string]any{"f": "a"}, false},
		{"email", []string{"email"}, map[string]any{"f": "a@b.com"}, true},
		{"email bad", []string{"email"}, map[string]any{"f": "a@"}, false},
		{"url", []string{"url"}, map[string]any{"f": "https://example.com/x"}, true},
		{"url bad", []string{"url"}, map[string]any{"f": "example.com"}, false},
		{"regex", []string{"regex:/^[a-z]+$/i"}, map[string]any{"f": "ABC"}, true},
		{"regex comma", []string{"regex:^a{1,2}$"}, map[string]any{"f": "aa"}, true},
		{"regex bad", []string{"regex:^[a-z]+$"}, map[string]any{"f": "ABC"}, false},
		{"in", []string{"in:a,b"}, map[string]any{"f": "b"}, true},
		{"in miss", []string{"in:a,b"}, map[string]any{"f": "c"}, false},
		{"not_in", []string{"not_in:a,b"}, map[string]any{"f": "c"}, true},
		{"min string length", []string{"min:3"}, map[string]any{"f": "äbc"}, true},
		{"min string short", []string{"min:3"}, map[string]any{"f": "ab"}, false},
		{"min number", []string{"min:3"}, map[string]any{"f": 2}, false},
		{"min numeric string", []string{"numeric", "min:3"}, map[string]any{"f": "10"}, true},
		{"max list", []string{"max:2"}, map[string]any{"f": []any{1, 2, 3}}, false},
		{"between", []string{"between:1,5"}, map[string]any{"f": 5}, true},
		{"size", []string{"size:2"}, map[string]any{"f": "ab"}, true},
		{"size bool", []string{"size:1"}, map[string]any{"f": true}, false},
		{"accepted", []string{"accepted"}, map[string]any{"f": "yes"}, true},
		{"accepted missing", []string{"accepted"}, map[string]any{}, false},
		{"present", []string{"present"}, map[string]any{"f": nil}, true},
		{"present missing", []string{"present"}, map[string]any{}, false},
		{"filled absent", []string{"filled"}, map[string]any{}, true},
		{"filled blank", []string{"filled"}, map[string]any{"f": ""}, false},
		{"prohibited", []string{"prohibited"}, map[string]any{"f": "x"}, false},
		{"prohibited blank", []string{"prohibited"}, map[string]any{"f": ""}, true},
		{"sometimes absent", []string{"sometimes", "required"}, map[string]any{}, true},
		{"sometimes present", []string{"sometimes", "required"}, map[string]any{"f": ""}, false},
		{"same", []string{"same:g"}, map[string]any{"f": "x", "g": "x"}, true},
		{"different", []string{"different:g"}, map[string]any{"f": "x", "g": "x"}, false},
		{"required_if match", []string{"required_if:g,a,b"}, map[string]any{"g": "b"}, false},
		{"required_if other", []string{"required_if:g,a"}, map[string]any{"g": "c"}, true},
		{"required_if bool", []string{"required_if:g,true"}, map[string]any{"g": true}, false},
		{"required_unless", []string{"required_unless:g,a"}, map[string]any{"g": "c"}, false},
		{"required_unless match", []string{"required_unless:g,a"}, map[string]any{"g": "a"}, true},
		{"prohibited_if", []string{"prohibited_if:g,x"}, map[string]any{"g": "x", "f": 1}, false},
		{"required_with", []string{"required_with:g,h"}, map[string]any{"h": "x"}, false},
		{"required_with idle", []string{"required_with:g,h"}, map[string]any{"h": ""}, true},
		{"required_without any missing", []string{"required_without:g,h"}, map[string]any{"g": "x"}, false},
		{"required_without all there", []string{"required_without:g,h"}, map[string]any{"g": "x", "h": "y"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evaluate(t, propschema.RuleTable{"f": tokens(tt.rules...)}, tt.record)
			assert.Equal(t, tt.valid, res.Valid, "errors: %v", res.Errors)
		})
	}
}

func TestEvaluate_ImplicitStops(t *testing.T) {
	res := evaluate(t, propschema.RuleTable{"f": tokens("required", "email", "min:10")}, map[string]any{})
	assert.Equal(t, []string{"The f field is required."}, res.Errors["f"])
}

func TestEvaluate_CollectsAndBails(t *testing.T) {
	res := evaluate(t, propschema.RuleTable{"f": tokens("email", "min:10")}, map[string]any{"f": "nope"})
	assert.Len(t, res.Errors["f"], 2)
	assert.Len(t, res.Issues, 2)

	res = evaluate(t, propschema.RuleTable{"f": tokens("bail", "email", "min:10")}, map[string]any{"f": "nope"})
	assert.Equal(t, []string{"The f field must be a valid email address."}, res.Errors["f"])
}

func TestEvaluate_DedupesExpandedTokens(t *testing.T) {
	table := propschema.RuleTable{"f": {
		propschema.Token("email"),
		{When: func(map[string]any) bool { return true }, Rules: []string{"email"}},
	}}
	res := evaluate(t, table, map[string]any{"f": "x"})
	assert.Len(t, res.Errors["f"], 1)
}

func TestEvaluate_Messages(t *testing.T) {
	res, err := New().Evaluate(propschema.Input{
		Rules: propschema.RuleTable{
			"age":       tokens("integer", "between:18,99"),
			"last_name": tokens("required"),
			"vat":       tokens("required_with:company_name"),
		},
		Record:     map[string]any{"age": 12, "company_name": "ACME"},
		Attributes: map[string]string{"company_name": "Company"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"age":       {"The age field must be between 18 and 99."},
		"last_name": {"The last name field is required."},
		"vat":       {"The vat field is required when Company is present."},
	}, res.Errors)

	var ageIssue propschema.Issue
	for _, is := range res.Issues {
		if is.Path == "/age" {
			ageIssue = is
		}
	}
	assert.Equal(t, "between", ageIssue.Code)
	assert.Equal(t, "18", ageIssue.Params["min"])
	assert.Equal(t, "99", ageIssue.Params["max"])
}

func TestEvaluate_NestedField(t *testing.T) {
	res := evaluate(t, propschema.RuleTable{"address.zip": tokens("required", "size:5")},
		map[string]any{"address": map[string]any{"zip": "123"}})
	assert.False(t, res.Valid)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "/address/zip", res.Issues[0].Path)
	assert.Equal(t, []string{"The address zip field must be 5."}, res.Errors["address.zip"])
}

func TestEvaluate_Misconfiguration(t *testing.T) {
	tests := []struct {
		token string
		want  error
	}{
		{"frobnicate", ErrUnknownRule},
		{"min", ErrBadParameter},
		{"min:abc", ErrBadParameter},
		{"between:1", ErrBadParameter},
		{"regex:[", ErrBadParameter},
		{"required_if", ErrBadParameter},
		{"same:", ErrBadParameter},
		{"required_with", ErrBadParameter},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			_, err := New().Evaluate(propschema.Input{
				Rules:  propschema.RuleTable{"f": tokens(tt.token)},
				Record: map[string]any{"f": "x"},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEvaluate_MarkersOnly(t *testing.T) {
	res := evaluate(t, propschema.RuleTable{"f": tokens("nullable", "bail")}, map[string]any{})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Errors)
}
