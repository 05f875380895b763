package propschema

import (
	"fmt"
	"regexp"
	"sort"
)

// Document keys with a dedicated meaning. Every other key of a serialized
// Property is an attribute.
const (
	KeyName             = "name"
	KeyType             = "type"
	KeyDescription      = "description"
	KeyDefault          = "default"
	KeyFormat           = "format"
	KeyMinimum          = "minimum"
	KeyMaximum          = "maximum"
	KeyPattern          = "pattern"
	KeyReference        = "$ref"
	KeyProperties       = "properties"
	KeyItems            = "items"
	KeyRequired         = "required"
	KeyRules            = "rules"
	KeyConditionalRules = "conditionalRules"
)

var coreKeys = map[string]struct{}{
	KeyName: {}, KeyType: {}, KeyDescription: {}, KeyDefault: {}, KeyFormat: {},
	KeyMinimum: {}, KeyMaximum: {}, KeyPattern: {}, KeyReference: {},
	KeyProperties: {}, KeyItems: {}, KeyRequired: {}, KeyRules: {},
	KeyConditionalRules: {},
}

// ToArray returns the document form of the Property: plain maps, slices and
// scalars suitable for JSON or YAML encoding. Attributes are merged last and
// win over computed keys.
func (p *Property) ToArray() map[string]any {
	out := map[string]any{
		KeyName: p.name,
		KeyType: p.typ.Value(),
	}
	if p.hasDesc {
		out[KeyDescription] = p.description
	}
	if p.hasDefault {
		out[KeyDefault] = cloneValue(p.def)
	}
	if p.format != "" {
		out[KeyFormat] = p.format
	}
	if p.minimum != nil {
		out[KeyMinimum] = *p.minimum
	}
	if p.maximum != nil {
		out[KeyMaximum] = *p.maximum
	}
	if p.pattern != nil {
		out[KeyPattern] = p.pattern.String()
	}
	if p.reference != "" {
		out[KeyReference] = p.reference
	}
	if len(p.children) > 0 {
		props := make(map[string]any, len(p.children))
		for _, c := range p.children {
			props[c.name] = nodeToArray(c.value)
		}
		out[KeyProperties] = props
	}
	if p.items != nil {
		out[KeyItems] = nodeToArray(p.items)
	}
	if p.required {
		out[KeyRequired] = true
	}
	if len(p.rules) > 0 {
		out[KeyRules] = append([]string(nil), p.rules...)
	}
	if len(p.conditional) > 0 {
		crs := make([]any, len(p.conditional))
		for i, r := range p.conditional {
			crs[i] = r.ToArray()
		}
		out[KeyConditionalRules] = crs
	}
	for k, v := range p.attributes {
		out[k] = cloneValue(v)
	}
	return out
}

func nodeToArray(v any) map[string]any {
	switch t := v.(type) {
	case *Property:
		doc := t.ToArray()
		delete(doc, KeyName)
		return doc
	case map[string]any:
		return cloneMap(t)
	}
	return nil
}

// FromArray rebuilds a Property from its document form. Closure rules
// cannot be restored and produce an error, as do malformed core keys.
func FromArray(name string, doc map[string]any) (*Property, error) {
	if n, ok := doc[KeyName].(string); ok && n != "" && name == "" {
		name = n
	}
	rawType, ok := doc[KeyType]
	if !ok {
		return nil, fmt.Errorf("%w: property %q: missing type", ErrInvalidArgument, name)
	}
	t, err := ParseType(rawType)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", name, err)
	}
	p := New(name, t)

	if v, ok := doc[KeyDescription]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(name, KeyDescription, "string", v)
		}
		p.Description(s)
	}
	if v, ok := doc[KeyDefault]; ok {
		p.Default(cloneValue(v))
	}
	if v, ok := doc[KeyFormat]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(name, KeyFormat, "string", v)
		}
		p.Format(s)
	}
	if v, ok := doc[KeyMinimum]; ok {
		f, ok := AsFloat(v)
		if !ok {
			return nil, fieldError(name, KeyMinimum, "number", v)
		}
		p.Minimum(f)
	}
	if v, ok := doc[KeyMaximum]; ok {
		f, ok := AsFloat(v)
		if !ok {
			return nil, fieldError(name, KeyMaximum, "number", v)
		}
		p.Maximum(f)
	}
	if v, ok := doc[KeyPattern]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(name, KeyPattern, "string", v)
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("%w: property %q: pattern: %v", ErrInvalidArgument, name, err)
		}
		p.pattern = re
	}
	if v, ok := doc[KeyReference]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(name, KeyReference, "string", v)
		}
		p.Reference(s)
	}
	if v, ok := doc[KeyRules]; ok {
		rules, err := stringList(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: rules: %w", name, err)
		}
		p.Rules(rules...)
	}
	if v, ok := doc[KeyRequired]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, fieldError(name, KeyRequired, "boolean", v)
		}
		if b {
			p.Required()
		}
	}
	if v, ok := doc[KeyProperties]; ok {
		if t.Primary() != TagObject {
			return nil, fmt.Errorf("%w: property %q: properties require type object", ErrInvalidArgument, name)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fieldError(name, KeyProperties, "object", v)
		}
		for _, k := range sortedKeys(m) {
			node, err := nodeFromArray(k, m[k])
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			p.setChild(k, node)
		}
	}
	if v, ok := doc[KeyItems]; ok {
		if t.Primary() != TagArray {
			return nil, fmt.Errorf("%w: property %q: items require type array", ErrInvalidArgument, name)
		}
		node, err := nodeFromArray(name+"_item", v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		p.items = node
	}
	if v, ok := doc[KeyConditionalRules]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, fieldError(name, KeyConditionalRules, "list", v)
		}
		for i, it := range list {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, fieldError(name, fmt.Sprintf("%s[%d]", KeyConditionalRules, i), "object", it)
			}
			r, err := conditionalFromArray(m)
			if err != nil {
				return nil, fmt.Errorf("property %q: %s[%d]: %w", name, KeyConditionalRules, i, err)
			}
			p.conditional = append(p.conditional, r)
		}
	}
	for k, v := range doc {
		if _, core := coreKeys[k]; !core {
			p.AddAttribute(k, cloneValue(v))
		}
	}
	return p, nil
}

// BuilderFromArray rebuilds a builder from a PropertyBuilder.ToArray
// document. Names listed in order come first, the rest follow sorted.
func BuilderFromArray(doc map[string]any, order []string) (*PropertyBuilder, error) {
	b := NewBuilder()
	seen := map[string]struct{}{}
	names := make([]string, 0, len(doc))
	for _, n := range order {
		if _, ok := doc[n]; ok {
			if _, dup := seen[n]; !dup {
				names = append(names, n)
				seen[n] = struct{}{}
			}
		}
	}
	for _, n := range sortedKeys(doc) {
		if _, ok := seen[n]; !ok {
			names = append(names, n)
		}
	}
	for _, n := range names {
		m, ok := doc[n].(map[string]any)
		if !ok {
			return nil, fieldError(n, "", "object", doc[n])
		}
		p, err := FromArray(n, m)
		if err != nil {
			return nil, err
		}
		p.SetName(n)
		b.Add(p)
	}
	return b, nil
}

// nodeFromArray returns a *Property when the fragment declares a type and a
// raw fragment otherwise.
func nodeFromArray(name string, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fieldError(name, "", "object", v)
	}
	if _, typed := m[KeyType]; !typed {
		return cloneMap(m), nil
	}
	return FromArray(name, m)
}

func conditionalFromArray(m map[string]any) (ConditionalRule, error) {
	var r ConditionalRule
	kindName, _ := m["kind"].(string)
	kind, ok := ParseConditionKind(kindName)
	if !ok {
		return r, fmt.Errorf("%w: unknown conditional kind %q", ErrInvalidArgument, kindName)
	}
	if kind == KindClosure || m["closure"] == true {
		return r, fmt.Errorf("%w: closure rules cannot be decoded", ErrInvalidArgument)
	}
	r.Kind = kind
	rules, err := stringList(m["rules"])
	if err != nil {
		return r, fmt.Errorf("rules: %w", err)
	}
	r.Rules = rules
	if v, ok := m["fields"]; ok {
		with, err := stringList(v)
		if err != nil {
			return r, fmt.Errorf("fields: %w", err)
		}
		r.With = with
	}
	switch f := m["field"].(type) {
	case string:
		r.Field = f
	case map[string]any:
		r.Fields = cloneMap(f)
	case nil:
	default:
		return r, fmt.Errorf("%w: field must be a string or an object, got %T", ErrInvalidArgument, f)
	}
	switch kind {
	case KindPatternMatch:
		payload, _ := m["value"].(map[string]any)
		expr, ok := payload["pattern"].(string)
		if !ok {
			return r, fmt.Errorf("%w: pattern_match requires value.pattern", ErrInvalidArgument)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return r, fmt.Errorf("%w: pattern: %v", ErrInvalidArgument, err)
		}
		r.Pattern = re
	case KindComparison:
		payload, _ := m["value"].(map[string]any)
		op, ok := payload["operator"].(string)
		if !ok {
			return r, fmt.Errorf("%w: comparison requires value.operator", ErrInvalidArgument)
		}
		r.Operator = op
		r.Value = cloneValue(payload["value"])
	case KindFieldEqual:
		r.Value = cloneValue(m["value"])
	}
	return r, nil
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidArgument, it)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrInvalidArgument, v)
	}
}

func fieldError(name, key, want string, got any) error {
	if key == "" {
		return fmt.Errorf("%w: property %q: expected %s, got %T", ErrInvalidArgument, name, want, got)
	}
	return fmt.Errorf("%w: property %q: %s must be %s, got %T", ErrInvalidArgument, name, key, want, got)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
