package propschema

import (
	"strings"
)

// FieldRule is one entry of a field's rule list: either a plain token such
// as "required" or "min:3", or a conditional entry whose Rules apply when
// When(record) holds.
type FieldRule struct {
	Token string
	When  Predicate
	Rules []string
	// Kind records which conditional variant produced the entry.
	Kind ConditionKind
}

// Token wraps a plain rule token.
func Token(token string) FieldRule { return FieldRule{Token: token} }

// IsConditional reports whether the entry is deferred on a predicate.
func (r FieldRule) IsConditional() bool { return r.When != nil }

// Expand returns the tokens this entry contributes for record.
func (r FieldRule) Expand(record map[string]any) []string {
	if r.When == nil {
		if r.Token == "" {
			return nil
		}
		return []string{r.Token}
	}
	if !r.When(record) {
		return nil
	}
	return r.Rules
}

// RuleTable maps field names to their rule lists.
type RuleTable map[string][]FieldRule

// Input is what a compiled schema hands to an Engine.
type Input struct {
	Rules      RuleTable
	Record     map[string]any
	Messages   map[string]string
	Attributes map[string]string
}

// Result is the outcome of a validation run. Errors is never nil.
type Result struct {
	Valid  bool
	Errors map[string][]string
	Issues Issues
}

// Engine executes a rule table against a record. Errors are reserved for
// misconfiguration such as unknown rule tokens; invalid records are reported
// through Result.
type Engine interface {
	Evaluate(in Input) (Result, error)
}

// Lookup reads a field from record. An exact key wins; otherwise the name
// is treated as a dot separated path into nested maps.
func Lookup(record map[string]any, field string) (any, bool) {
	if record == nil {
		return nil, false
	}
	if v, ok := record[field]; ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	var cur any = record
	for _, seg := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// HumanizeField turns a field name into a message label ("tax_id" becomes
// "tax id").
func HumanizeField(field string) string {
	return strings.NewReplacer("_", " ", ".", " ").Replace(field)
}
