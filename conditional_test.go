package propschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhen_SelectsKind(t *testing.T) {
	var pred Predicate = func(map[string]any) bool { return true }
	p := String("vat").
		When(pred, nil, "required").
		When(func(map[string]any) bool { return false }, nil, "email").
		When(map[string]any{"kind": "business", "country": "DE"}, nil, "required").
		When("kind", "business", "min:5")

	crs := p.ConditionalRules()
	require.Len(t, crs, 4)
	assert.Equal(t, KindClosure, crs[0].Kind)
	assert.Equal(t, KindClosure, crs[1].Kind)
	assert.Equal(t, KindFieldsEqual, crs[2].Kind)
	assert.Equal(t, "DE", crs[2].Fields["country"])
	assert.Equal(t, KindFieldEqual, crs[3].Kind)
	assert.Equal(t, "kind", crs[3].Field)
	assert.Equal(t, "business", crs[3].Value)
	assert.Equal(t, []string{"min:5"}, crs[3].Rules)
}

func TestWhen_RejectsBadSelectors(t *testing.T) {
	requireInvalidArgument(t, func() { String("a").When(42, nil, "required") })
	requireInvalidArgument(t, func() { String("a").When([]string{"x"}, nil, "required") })
	requireInvalidArgument(t, func() { String("a").When("", "x", "required") })
	requireInvalidArgument(t, func() { String("a").When(map[string]any{}, nil, "required") })
	requireInvalidArgument(t, func() { String("a").When(Predicate(nil), nil, "required") })
	requireInvalidArgument(t, func() { String("a").WhenMatches("b", "[", "required") })
}

func TestRequiredIf_AddsTokenAndRule(t *testing.T) {
	p := String("company").RequiredIf("is_business", true).ProhibitedIf("kind", "private")

	assert.Equal(t, []string{"required_if:is_business,true", "prohibited_if:kind,private"}, p.RuleTokens())
	assert.False(t, p.IsRequired())

	crs := p.ConditionalRules()
	require.Len(t, crs, 2)
	assert.Equal(t, ConditionalRule{Kind: KindFieldEqual, Field: "is_business", Value: true, Rules: []string{"required"}}, crs[0])
	assert.Equal(t, []string{"prohibited"}, crs[1].Rules)
}

func TestRequiredWithWithout(t *testing.T) {
	p := String("tax_id").RequiredWith("is_business", "vat").RequiredWithout("ssn")
	crs := p.ConditionalRules()
	require.Len(t, crs, 2)
	assert.Equal(t, KindRequiredWith, crs[0].Kind)
	assert.Equal(t, []string{"is_business", "vat"}, crs[0].With)
	assert.Equal(t, []string{"required"}, crs[0].Rules)
	assert.Equal(t, KindRequiredWithout, crs[1].Kind)
	assert.Empty(t, p.RuleTokens())
}

func TestConditionalRule_ToArray(t *testing.T) {
	p := String("code").
		When(func(map[string]any) bool { return true }, nil, "required").
		When(map[string]any{"a": 1}, nil, "required").
		WhenMatches("country", `^(DE|FR)$`, "required").
		WhenCompare("age", OpGe, 18, "required").
		When("kind", nil, "prohibited").
		RequiredWith("vat")
	docs := make([]map[string]any, 0)
	for _, r := range p.ConditionalRules() {
		docs = append(docs, r.ToArray())
	}

	assert.Equal(t, map[string]any{"kind": "closure", "closure": true, "rules": []string{"required"}}, docs[0])
	assert.Equal(t, map[string]any{"kind": "fields_equal", "field": map[string]any{"a": 1}, "rules": []string{"required"}}, docs[1])
	assert.Equal(t, map[string]any{
		"kind":  "pattern_match",
		"field": "country",
		"value": map[string]any{"pattern": `^(DE|FR)$`},
		"rules": []string{"required"},
	}, docs[2])
	assert.Equal(t, map[string]any{
		"kind":  "comparison",
		"field": "age",
		"value": map[string]any{"operator": ">=", "value": 18},
		"rules": []string{"required"},
	}, docs[3])
	assert.Equal(t, map[string]any{"kind": "field_equal", "field": "kind", "value": nil, "rules": []string{"prohibited"}}, docs[4])
	assert.Equal(t, map[string]any{"kind": "required_with", "fields": []string{"vat"}, "rules": []string{"required"}}, docs[5])
}

func TestConditionKind_String(t *testing.T) {
	for k := KindFieldEqual; k <= KindRequiredWithout; k++ {
		parsed, ok := ParseConditionKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseConditionKind("nope")
	assert.False(t, ok)
	assert.Equal(t, "kind(42)", ConditionKind(42).String())
}

func TestTokenValue(t *testing.T) {
	assert.Equal(t, "null", TokenValue(nil))
	assert.Equal(t, "true", TokenValue(true))
	assert.Equal(t, "false", TokenValue(false))
	assert.Equal(t, "abc", TokenValue("abc"))
	assert.Equal(t, "12", TokenValue(12))
	assert.Equal(t, "1.5", TokenValue(1.5))
	assert.Equal(t, "a,1,true", TokenValue([]any{"a", 1, true}))
}
