package propschema

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// PropertyBuilder is an insertion-ordered collection of Properties keyed by
// name.
type PropertyBuilder struct {
	order []string
	props map[string]*Property
}

// NewBuilder returns an empty builder.
func NewBuilder() *PropertyBuilder {
	return &PropertyBuilder{props: map[string]*Property{}}
}

// Add registers p under its name and returns p for chaining. A later Add
// with the same name replaces the earlier Property in place.
func (b *PropertyBuilder) Add(p *Property) *Property {
	if p == nil {
		invalidArgument("builder: nil property")
	}
	if _, ok := b.props[p.name]; !ok {
		b.order = append(b.order, p.name)
	}
	b.props[p.name] = p
	return p
}

// Get returns the Property registered under name.
func (b *PropertyBuilder) Get(name string) (*Property, bool) {
	p, ok := b.props[name]
	return p, ok
}

// Names returns the registered names in insertion order.
func (b *PropertyBuilder) Names() []string { return append([]string(nil), b.order...) }

func (b *PropertyBuilder) Len() int { return len(b.order) }

// Properties returns the registered Properties in insertion order.
func (b *PropertyBuilder) Properties() []*Property {
	out := make([]*Property, 0, len(b.order))
	for _, n := range b.order {
		out = append(out, b.props[n])
	}
	return out
}

// Validate registers a bare string Property carrying the given rule tokens
// and returns it.
func (b *PropertyBuilder) Validate(name string, rules ...string) *Property {
	return b.ValidateAs(name, TagString, rules...)
}

// ValidateAs is Validate with an explicit type.
func (b *PropertyBuilder) ValidateAs(name string, t Tag, rules ...string) *Property {
	return b.Add(New(name, Single(t)).Rules(rules...))
}

// Merge copies every Property of other into b, overwriting by name. The
// copies are deep clones, so later mutation of either side is not shared.
func (b *PropertyBuilder) Merge(other *PropertyBuilder) *PropertyBuilder {
	if other == nil {
		return b
	}
	for _, p := range other.Properties() {
		b.Add(p.Clone())
	}
	return b
}

// Prefix renames every Property to prefix+name and re-keys the builder.
func (b *PropertyBuilder) Prefix(prefix string) *PropertyBuilder {
	props := b.Properties()
	b.order = b.order[:0]
	b.props = make(map[string]*Property, len(props))
	for _, p := range props {
		p.SetName(prefix + p.name)
		b.Add(p)
	}
	return b
}

// ToArray returns one document entry per Property keyed by name, without
// the "name" key.
func (b *PropertyBuilder) ToArray() map[string]any {
	out := make(map[string]any, len(b.order))
	for _, n := range b.order {
		out[n] = b.entry(b.props[n])
	}
	return out
}

func (b *PropertyBuilder) entry(p *Property) map[string]any {
	doc := p.ToArray()
	delete(doc, "name")
	if def, ok := doc["default"]; ok {
		delete(doc, "default")
		doc["default"] = def
	}
	return doc
}

// MarshalJSON encodes ToArray keeping insertion order of the Properties.
func (b *PropertyBuilder) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(b.entry(b.props[n]))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
