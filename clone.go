package propschema

// Clone returns a deep copy. Children, items, attributes, rules and
// conditional payloads are copied; predicates and compiled patterns are
// immutable and shared.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	cp := *p
	cp.rules = append([]string(nil), p.rules...)
	cp.attributes = cloneMap(p.attributes)
	if cp.attributes == nil {
		cp.attributes = map[string]any{}
	}
	cp.def = cloneValue(p.def)
	if p.minimum != nil {
		v := *p.minimum
		cp.minimum = &v
	}
	if p.maximum != nil {
		v := *p.maximum
		cp.maximum = &v
	}
	cp.children = nil
	for _, c := range p.children {
		cp.children = append(cp.children, child{name: c.name, value: cloneNode(c.value)})
	}
	cp.items = cloneNode(p.items)
	cp.conditional = nil
	for _, r := range p.conditional {
		cp.conditional = append(cp.conditional, r.clone())
	}
	return &cp
}

// clone copies the payload maps and slices of r. Closure and Pattern are
// shared.
func (r ConditionalRule) clone() ConditionalRule {
	r.Fields = cloneMap(r.Fields)
	r.Value = cloneValue(r.Value)
	r.With = append([]string(nil), r.With...)
	r.Rules = append([]string(nil), r.Rules...)
	return r
}

func cloneNode(v any) any {
	switch t := v.(type) {
	case *Property:
		return t.Clone()
	case map[string]any:
		return cloneMap(t)
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = cloneValue(it)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case *Property:
		return t.Clone()
	default:
		return v
	}
}
