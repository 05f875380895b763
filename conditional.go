package propschema

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// ConditionKind discriminates ConditionalRule variants.
type ConditionKind int

const (
	// KindFieldEqual applies when record[Field] strictly equals Value.
	KindFieldEqual ConditionKind = iota
	// KindClosure applies when Closure(record) is true.
	KindClosure
	// KindFieldsEqual applies when every Fields[k] equals record[k].
	KindFieldsEqual
	// KindPatternMatch applies when record[Field] matches Pattern.
	KindPatternMatch
	// KindComparison applies when Compare(record[Field], Operator, Value).
	KindComparison
	// KindRequiredWith requires the owner when any of With is filled.
	KindRequiredWith
	// KindRequiredWithout requires the owner when none of With is filled.
	KindRequiredWithout
)

var kindNames = map[ConditionKind]string{
	KindFieldEqual:      "field_equal",
	KindClosure:         "closure",
	KindFieldsEqual:     "fields_equal",
	KindPatternMatch:    "pattern_match",
	KindComparison:      "comparison",
	KindRequiredWith:    "required_with",
	KindRequiredWithout: "required_without",
}

func (k ConditionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseConditionKind is the inverse of ConditionKind.String.
func ParseConditionKind(s string) (ConditionKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Predicate is evaluated against the full input record.
type Predicate func(record map[string]any) bool

// ConditionalRule applies Rules only when its condition holds over the
// input record. Kind is set by the constructing method; the compiler
// resolves the payload in a fixed precedence order (Closure, Fields,
// Pattern, Operator, equality) for the record-level kinds.
type ConditionalRule struct {
	Kind     ConditionKind
	Closure  Predicate
	Fields   map[string]any
	Field    string
	Pattern  *regexp.Regexp
	Operator string
	Value    any
	With     []string
	Rules    []string
}

// MarshalJSON renders the rule for documents. Closures are not encodable and
// are rendered as "closure": true.
func (r ConditionalRule) MarshalJSON() ([]byte, error) { return json.Marshal(r.ToArray()) }

// ToArray returns the document form of the rule.
func (r ConditionalRule) ToArray() map[string]any {
	out := map[string]any{
		"kind":  r.Kind.String(),
		"rules": append([]string(nil), r.Rules...),
	}
	if r.Closure != nil {
		out["closure"] = true
	}
	if r.Fields != nil {
		out["field"] = cloneValue(r.Fields)
	} else if r.Field != "" {
		out["field"] = r.Field
	}
	switch {
	case r.Pattern != nil:
		out["value"] = map[string]any{"pattern": r.Pattern.String()}
	case r.Operator != "":
		out["value"] = map[string]any{"operator": r.Operator, "value": cloneValue(r.Value)}
	case r.Kind == KindFieldEqual:
		out["value"] = cloneValue(r.Value)
	}
	if len(r.With) > 0 {
		out["fields"] = append([]string(nil), r.With...)
	}
	return out
}

// When adds a conditional rule. The selector decides the variant:
//
//	func(map[string]any) bool or Predicate  closure over the record (value ignored)
//	map[string]any                          every key equals the record entry (value ignored)
//	string                                  record[selector] strictly equals value
//
// Any other selector panics with ErrInvalidArgument.
func (p *Property) When(selector any, value any, rules ...string) *Property {
	switch s := selector.(type) {
	case Predicate:
		if s == nil {
			invalidArgument("property %q: nil predicate", p.name)
		}
		return p.addConditional(ConditionalRule{Kind: KindClosure, Closure: s, Rules: rules})
	case func(map[string]any) bool:
		if s == nil {
			invalidArgument("property %q: nil predicate", p.name)
		}
		return p.addConditional(ConditionalRule{Kind: KindClosure, Closure: s, Rules: rules})
	case map[string]any:
		if len(s) == 0 {
			invalidArgument("property %q: empty field map", p.name)
		}
		return p.addConditional(ConditionalRule{Kind: KindFieldsEqual, Fields: cloneMap(s), Rules: rules})
	case string:
		if s == "" {
			invalidArgument("property %q: empty field name", p.name)
		}
		return p.addConditional(ConditionalRule{Kind: KindFieldEqual, Field: s, Value: value, Rules: rules})
	default:
		invalidArgument("property %q: unsupported condition selector %T", p.name, selector)
		return p
	}
}

// WhenMatches applies rules when record[field] is a string matching expr.
// An invalid expression panics with ErrInvalidArgument.
func (p *Property) WhenMatches(field, expr string, rules ...string) *Property {
	re, err := regexp.Compile(expr)
	if err != nil {
		invalidArgument("property %q: invalid pattern %q: %v", p.name, expr, err)
	}
	return p.addConditional(ConditionalRule{Kind: KindPatternMatch, Field: field, Pattern: re, Rules: rules})
}

// WhenCompare applies rules when Compare(record[field], op, value) holds.
// Unsupported operators are accepted and never fire.
func (p *Property) WhenCompare(field, op string, value any, rules ...string) *Property {
	return p.addConditional(ConditionalRule{Kind: KindComparison, Field: field, Operator: op, Value: value, Rules: rules})
}

// RequiredWith makes the Property required when any of fields is filled.
func (p *Property) RequiredWith(fields ...string) *Property {
	return p.addConditional(ConditionalRule{Kind: KindRequiredWith, With: fields, Rules: []string{"required"}})
}

// RequiredWithout makes the Property required when none of fields is filled.
func (p *Property) RequiredWithout(fields ...string) *Property {
	return p.addConditional(ConditionalRule{Kind: KindRequiredWithout, With: fields, Rules: []string{"required"}})
}

// RequiredIf makes the Property required when record[field] equals value.
// It also records the required_if token for serialization.
func (p *Property) RequiredIf(field string, value any) *Property {
	p.When(field, value, "required")
	return p.AddRule("required_if:" + field + "," + TokenValue(value))
}

// ProhibitedIf forbids a value when record[field] equals value.
// It also records the prohibited_if token for serialization.
func (p *Property) ProhibitedIf(field string, value any) *Property {
	p.When(field, value, "prohibited")
	return p.AddRule("prohibited_if:" + field + "," + TokenValue(value))
}

func (p *Property) addConditional(r ConditionalRule) *Property {
	r.Rules = append([]string(nil), r.Rules...)
	r.With = append([]string(nil), r.With...)
	p.conditional = append(p.conditional, r)
	return p
}

// TokenValue renders a value as a rule token parameter.
func TokenValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, it := range t {
			parts[i] = TokenValue(it)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
