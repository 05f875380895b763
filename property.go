package propschema

import (
	"regexp"
	"sort"
	"strings"
)

// Property is a single named, typed schema node. Object properties own
// ordered children, array properties own an item schema.
//
// Mutators return the receiver so calls chain. A Property must not be
// mutated concurrently.
type Property struct {
	name        string
	typ         Type
	description string
	hasDesc     bool
	def         any
	hasDefault  bool
	rules       []string
	required    bool
	attributes  map[string]any
	children    []child
	items       any // *Property or map[string]any
	format      string
	minimum     *float64
	maximum     *float64
	pattern     *regexp.Regexp
	reference   string
	conditional []ConditionalRule
}

// child is a named entry of an object Property: either *Property or a raw
// map[string]any fragment.
type child struct {
	name  string
	value any
}

// New creates a Property with the given type.
func New(name string, t Type) *Property {
	return &Property{name: name, typ: t, attributes: map[string]any{}}
}

func newTyped(name string, tag Tag, desc []string) *Property {
	p := New(name, Single(tag))
	if len(desc) > 0 && desc[0] != "" {
		p.Description(desc[0])
	}
	return p
}

// String creates a string Property.
func String(name string, desc ...string) *Property { return newTyped(name, TagString, desc) }

// Number creates a number Property.
func Number(name string, desc ...string) *Property { return newTyped(name, TagNumber, desc) }

// Integer creates an integer Property.
func Integer(name string, desc ...string) *Property { return newTyped(name, TagInteger, desc) }

// Boolean creates a boolean Property.
func Boolean(name string, desc ...string) *Property { return newTyped(name, TagBoolean, desc) }

// Object creates an object Property.
func Object(name string, desc ...string) *Property { return newTyped(name, TagObject, desc) }

// Array creates an array Property.
func Array(name string, desc ...string) *Property { return newTyped(name, TagArray, desc) }

func (p *Property) Name() string { return p.name }
func (p *Property) Type() Type   { return p.typ }

// SetName renames the Property. Containers keyed by the old name are not
// updated; PropertyBuilder.Prefix re-keys its own map.
func (p *Property) SetName(name string) *Property {
	p.name = name
	return p
}

func (p *Property) Description(desc string) *Property {
	p.description = desc
	p.hasDesc = true
	return p
}

func (p *Property) Default(v any) *Property {
	p.def = v
	p.hasDefault = true
	return p
}

// DefaultValue returns the default and whether one was set.
func (p *Property) DefaultValue() (any, bool) { return p.def, p.hasDefault }

// Rules adds each rule token, keeping the first occurrence of duplicates.
func (p *Property) Rules(rules ...string) *Property {
	for _, r := range rules {
		p.AddRule(r)
	}
	return p
}

// AddRule adds one rule token. Adding "required" marks the Property required.
func (p *Property) AddRule(rule string) *Property {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return p
	}
	if rule == "required" {
		p.required = true
	}
	for _, r := range p.rules {
		if r == rule {
			return p
		}
	}
	p.rules = append(p.rules, rule)
	return p
}

// HasRule reports whether the exact token is present.
func (p *Property) HasRule(rule string) bool {
	for _, r := range p.rules {
		if r == rule {
			return true
		}
	}
	return false
}

// RuleTokens returns a copy of the rule tokens in insertion order.
func (p *Property) RuleTokens() []string { return append([]string(nil), p.rules...) }

// Required marks the Property required. Required(false) removes every token
// starting with "required" (required_if, required_with...) and clears the flag.
func (p *Property) Required(required ...bool) *Property {
	on := len(required) == 0 || required[0]
	if on {
		return p.AddRule("required")
	}
	kept := p.rules[:0]
	for _, r := range p.rules {
		if !strings.HasPrefix(r, "required") {
			kept = append(kept, r)
		}
	}
	p.rules = kept
	p.required = false
	return p
}

func (p *Property) IsRequired() bool { return p.required }

// IsNullable reports whether the "nullable" token is present. A union type
// containing null does not by itself make the Property nullable.
func (p *Property) IsNullable() bool { return p.HasRule("nullable") }

// Nullable widens the type with null and adds the "nullable" token. It is
// idempotent.
func (p *Property) Nullable() *Property {
	p.typ = p.typ.withNull()
	return p.AddRule("nullable")
}

func (p *Property) AddAttribute(key string, v any) *Property {
	if p.attributes == nil {
		p.attributes = map[string]any{}
	}
	p.attributes[key] = v
	return p
}

// Attribute returns a single attribute.
func (p *Property) Attribute(key string) (any, bool) {
	v, ok := p.attributes[key]
	return v, ok
}

// Attributes returns a shallow copy of the attributes.
func (p *Property) Attributes() map[string]any {
	out := make(map[string]any, len(p.attributes))
	for k, v := range p.attributes {
		out[k] = v
	}
	return out
}

func (p *Property) Enum(values ...any) *Property {
	return p.AddAttribute("enum", append([]any(nil), values...))
}

func (p *Property) Format(format string) *Property {
	p.format = format
	return p
}

func (p *Property) Minimum(v float64) *Property {
	p.minimum = &v
	return p
}

func (p *Property) Maximum(v float64) *Property {
	p.maximum = &v
	return p
}

// Min is shorthand for Minimum.
func (p *Property) Min(v float64) *Property { return p.Minimum(v) }

// Max is shorthand for Maximum.
func (p *Property) Max(v float64) *Property { return p.Maximum(v) }

// Pattern sets the regular expression string values must match. An invalid
// expression panics with ErrInvalidArgument.
func (p *Property) Pattern(expr string) *Property {
	re, err := regexp.Compile(expr)
	if err != nil {
		invalidArgument("property %q: invalid pattern %q: %v", p.name, expr, err)
	}
	p.pattern = re
	return p
}

// Reference sets the $ref of the Property.
func (p *Property) Reference(ref string) *Property {
	p.reference = ref
	return p
}

// AddProperty appends (or replaces by name) a child. The Property must be an
// object.
func (p *Property) AddProperty(c *Property) *Property {
	if c == nil {
		invalidArgument("property %q: nil child", p.name)
	}
	p.requireObject("add property")
	p.setChild(c.name, c)
	return p
}

// AddRawProperty appends (or replaces by name) a raw document fragment as a
// child. The Property must be an object.
func (p *Property) AddRawProperty(name string, fragment map[string]any) *Property {
	p.requireObject("add property")
	p.setChild(name, fragment)
	return p
}

// Properties sets children from a map whose values are *Property or
// map[string]any. Keys are added in sorted order; for a *Property value the
// key becomes its name.
func (p *Property) Properties(props map[string]any) *Property {
	p.requireObject("set properties")
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := props[k].(type) {
		case *Property:
			p.setChild(k, v.SetName(k))
		case map[string]any:
			p.setChild(k, v)
		default:
			invalidArgument("property %q: child %q must be *Property or map[string]any, got %T", p.name, k, v)
		}
	}
	return p
}

// Children returns the child names and values (*Property or map[string]any)
// in insertion order.
func (p *Property) Children() ([]string, []any) {
	names := make([]string, len(p.children))
	values := make([]any, len(p.children))
	for i, c := range p.children {
		names[i] = c.name
		values[i] = c.value
	}
	return names, values
}

// Child returns the child Property by name, nil when absent or raw.
func (p *Property) Child(name string) *Property {
	for _, c := range p.children {
		if c.name == name {
			cp, _ := c.value.(*Property)
			return cp
		}
	}
	return nil
}

// Items sets the item schema (*Property or map[string]any). The Property
// must be an array.
func (p *Property) Items(item any) *Property {
	if p.typ.Primary() != TagArray {
		invalidArgument("property %q: items require type array, got %s", p.name, p.typ)
	}
	switch item.(type) {
	case *Property, map[string]any:
		p.items = item
	default:
		invalidArgument("property %q: items must be *Property or map[string]any, got %T", p.name, item)
	}
	return p
}

// ItemSchema returns the item schema, nil when unset.
func (p *Property) ItemSchema() any { return p.items }

// WithBuilder runs fn against a fresh PropertyBuilder. For an object the
// result becomes the children; for an array it becomes the properties of an
// object item schema.
func (p *Property) WithBuilder(fn func(*PropertyBuilder)) *Property {
	b := NewBuilder()
	fn(b)
	switch p.typ.Primary() {
	case TagObject:
		for _, c := range b.Properties() {
			p.setChild(c.name, c)
		}
	case TagArray:
		item := Object(p.name + "_item")
		for _, c := range b.Properties() {
			item.setChild(c.name, c)
		}
		p.items = item
	default:
		invalidArgument("property %q: builder requires type object or array, got %s", p.name, p.typ)
	}
	return p
}

// ConditionalRules returns a copy of the conditional rules in insertion order.
func (p *Property) ConditionalRules() []ConditionalRule {
	if len(p.conditional) == 0 {
		return nil
	}
	out := make([]ConditionalRule, len(p.conditional))
	for i, r := range p.conditional {
		out[i] = r.clone()
	}
	return out
}

func (p *Property) requireObject(op string) {
	if p.typ.Primary() != TagObject {
		invalidArgument("property %q: cannot %s on type %s", p.name, op, p.typ)
	}
}

func (p *Property) setChild(name string, v any) {
	for i, c := range p.children {
		if c.name == name {
			p.children[i].value = v
			return
		}
	}
	p.children = append(p.children, child{name: name, value: v})
}
