package propschema

import (
	"errors"
	"math"
	"net/mail"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/propschema/i18n"
)

// Validate checks value against the Property alone. context carries sibling
// values used by RequiredWith and RequiredWithout; other conditional kinds
// are realized only by the compiler's rule table.
func (p *Property) Validate(value any, context map[string]any) bool {
	empty := value == nil || value == ""
	for _, r := range p.conditional {
		switch r.Kind {
		case KindRequiredWith:
			if empty && anyFilled(context, r.With) {
				return false
			}
		case KindRequiredWithout:
			if empty && !anyFilled(context, r.With) {
				return false
			}
		}
	}

	if value == nil {
		if p.IsNullable() {
			return true
		}
		return !p.required
	}
	if value == "" {
		return !p.required
	}

	if !p.typeMatches(value) {
		return false
	}

	if s, ok := value.(string); ok && p.pattern != nil && !p.pattern.MatchString(s) {
		return false
	}

	if prim := p.typ.Primary(); prim == TagNumber || prim == TagInteger {
		if p.minimum != nil || p.maximum != nil {
			f, ok := AsFloat(value)
			if !ok {
				return false
			}
			if p.minimum != nil && f < *p.minimum {
				return false
			}
			if p.maximum != nil && f > *p.maximum {
				return false
			}
		}
	}

	if s, ok := value.(string); ok && p.HasRule("email") && !IsEmail(s) {
		return false
	}
	return true
}

// ValidationMessage returns the single fallback message for the Property.
func (p *Property) ValidationMessage() string {
	code := CodeInvalid
	if p.required {
		code = CodeRequired
	}
	return i18n.Attribute(i18n.T(code, nil), HumanizeField(p.name))
}

func (p *Property) typeMatches(value any) bool {
	tag := RuntimeTag(value)
	if p.typ.IsUnion() {
		// Runtime tags are compared verbatim, so a "number" member never
		// matches "integer" or "double".
		for _, t := range p.typ.tags {
			if string(t) == tag {
				return true
			}
		}
		return false
	}
	switch p.typ.Primary() {
	case TagObject:
		return tag == "object" || tag == "array"
	case TagNumber:
		return tag == "integer" || tag == "double"
	default:
		return tag == string(p.typ.Primary())
	}
}

// RuntimeTag returns the native type name of a value: null, integer,
// double, string, boolean, array or object. Integral json.Number values
// are integers.
func RuntimeTag(v any) string {
	if v == nil {
		return "null"
	}
	if n, ok := v.(json.Number); ok {
		if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return "integer"
		}
		return "double"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "double"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return rv.Kind().String()
	}
}

// AsFloat converts Go numbers and json.Number to float64. Strings are not
// coerced.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		// Out-of-range literals parse to ±Inf with ErrRange; keep the
		// infinity so bounds still reject them.
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
			return 0, false
		}
		return f, true
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// IsEmail reports whether s is a bare RFC 5322 address with a dotted or
// single-label domain and no display name.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" {
		return false
	}
	return addr.Address == s
}

// Filled reports whether v counts as supplied: nil, "", false and empty
// collections are blank. Numbers, zero included, are filled.
func Filled(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case bool:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func anyFilled(record map[string]any, fields []string) bool {
	for _, f := range fields {
		if v, ok := Lookup(record, f); ok && Filled(v) {
			return true
		}
	}
	return false
}
