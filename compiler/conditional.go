package compiler

import (
	propschema "github.com/reoring/propschema"
)

// Compile turns a conditional rule into a deferred rule-table entry. The
// payload is resolved by first match: closure, field map, pattern,
// operator, then plain equality. RequiredWith and RequiredWithout carry no
// record payload and compile to filled-field checks.
func Compile(r propschema.ConditionalRule) propschema.FieldRule {
	rules := append([]string(nil), r.Rules...)
	fr := propschema.FieldRule{Rules: rules}

	switch {
	case r.Closure != nil:
		fr.Kind = propschema.KindClosure
		fr.When = r.Closure
	case r.Fields != nil:
		fr.Kind = propschema.KindFieldsEqual
		fields := make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = v
		}
		fr.When = func(record map[string]any) bool {
			for k, want := range fields {
				got, _ := propschema.Lookup(record, k)
				if !propschema.StrictEqual(got, want) {
					return false
				}
			}
			return true
		}
	case r.Pattern != nil:
		fr.Kind = propschema.KindPatternMatch
		field, re := r.Field, r.Pattern
		fr.When = func(record map[string]any) bool {
			got, _ := propschema.Lookup(record, field)
			s, ok := got.(string)
			return ok && re.MatchString(s)
		}
	case r.Operator != "":
		fr.Kind = propschema.KindComparison
		field, op, want := r.Field, r.Operator, r.Value
		fr.When = func(record map[string]any) bool {
			got, _ := propschema.Lookup(record, field)
			return propschema.Compare(got, op, want)
		}
	case r.Kind == propschema.KindRequiredWith:
		fr.Kind = r.Kind
		with := append([]string(nil), r.With...)
		fr.When = func(record map[string]any) bool {
			for _, f := range with {
				if v, ok := propschema.Lookup(record, f); ok && propschema.Filled(v) {
					return true
				}
			}
			return false
		}
	case r.Kind == propschema.KindRequiredWithout:
		fr.Kind = r.Kind
		with := append([]string(nil), r.With...)
		fr.When = func(record map[string]any) bool {
			for _, f := range with {
				if v, ok := propschema.Lookup(record, f); ok && propschema.Filled(v) {
					return false
				}
			}
			return true
		}
	default:
		fr.Kind = propschema.KindFieldEqual
		field, want := r.Field, r.Value
		fr.When = func(record map[string]any) bool {
			got, _ := propschema.Lookup(record, field)
			return propschema.StrictEqual(got, want)
		}
	}
	return fr
}
