package kubeopenapi

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	propschema "github.com/reoring/propschema"
)

// Import converts an OpenAPI v3 object schema into a PropertyBuilder with one
// Property per top-level property. The input is a decoded map or raw JSON
// bytes holding either the schema itself, {openAPIV3Schema: ...}, or a whole
// CustomResourceDefinition.
//
// Structural keywords map onto Properties: type, nullable, description,
// default, enum, format, minimum, maximum, pattern, properties, items and
// required. minLength/maxLength and minItems/maxItems become "min:n" and
// "max:n" rule tokens. x-kubernetes-* extensions and title are kept as
// attributes. Anything else is reported through Diag (or fails in strict
// mode).
func Import(schema any, opts Options) (*propschema.PropertyBuilder, Diag, error) {
	d := &simpleDiag{strict: opts.Strict}
	var root map[string]any
	switch t := schema.(type) {
	case nil:
		return nil, d, errors.New("kubeopenapi: nil schema")
	case []byte:
		if err := json.Unmarshal(t, &root); err != nil {
			return nil, d, fmt.Errorf("kubeopenapi: invalid JSON: %w", err)
		}
	case map[string]any:
		root = deepCopyMap(t)
	default:
		return nil, d, fmt.Errorf("kubeopenapi: unsupported input %T", schema)
	}

	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if unwrapped := unwrapCRDSchema(root); unwrapped != nil {
		root = unwrapped
	}

	if err := resolveRefsInPlace(root, extractDefs(root), d, map[string]bool{}); err != nil {
		return nil, d, err
	}

	if t, _ := root["type"].(string); t != "object" && t != "" {
		d.warnf("non-object at root treated as object-compatible: type=%q", t)
	}

	b := propschema.NewBuilder()
	children, err := importProperties("", root, d)
	if err != nil {
		return nil, d, err
	}
	for _, c := range children {
		p, ok := c.value.(*propschema.Property)
		if !ok {
			if err := d.unsupported("%s: untyped top-level property skipped", c.name); err != nil {
				return nil, d, err
			}
			continue
		}
		b.Add(p)
	}
	return b, d, nil
}

// unwrapCRDSchema extracts openAPIV3Schema from a CustomResourceDefinition:
// spec.versions[].schema (preferring served versions), then the legacy
// spec.validation.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil
	}
	if vers, ok := spec["versions"].([]any); ok {
		var firstFound map[string]any
		for _, v := range vers {
			vm, _ := v.(map[string]any)
			sch, _ := vm["schema"].(map[string]any)
			oas, ok := sch["openAPIV3Schema"].(map[string]any)
			if !ok {
				continue
			}
			if served, ok := vm["served"].(bool); !ok || served {
				return oas
			}
			if firstFound == nil {
				firstFound = oas
			}
		}
		if firstFound != nil {
			return firstFound
		}
	}
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

type namedNode struct {
	name  string
	value any // *propschema.Property or a raw map[string]any fragment
}

// importProperties converts doc.properties in sorted order and applies
// doc.required to the results.
func importProperties(path string, doc map[string]any, d *simpleDiag) ([]namedNode, error) {
	pm, _ := doc["properties"].(map[string]any)
	names := make([]string, 0, len(pm))
	for k := range pm {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]namedNode, 0, len(names))
	byName := map[string]*propschema.Property{}
	for _, name := range names {
		ps, ok := pm[name].(map[string]any)
		if !ok {
			if err := d.unsupported("%s: property schema is %T", join(path, name), pm[name]); err != nil {
				return nil, err
			}
			continue
		}
		v, err := importNode(join(path, name), name, ps, d)
		if err != nil {
			return nil, err
		}
		if p, ok := v.(*propschema.Property); ok {
			byName[name] = p
		}
		out = append(out, namedNode{name: name, value: v})
	}

	for _, r := range extractRequiredNames(doc) {
		p, ok := byName[r]
		if !ok {
			if err := d.unsupported("%s: required property %q is not declared or untyped", pathOrRoot(path), r); err != nil {
				return nil, err
			}
			continue
		}
		p.Required()
	}
	return out, nil
}

// importNode returns a *propschema.Property, or the raw fragment when no
// type can be inferred.
func importNode(path, name string, ps map[string]any, d *simpleDiag) (any, error) {
	t, ok, err := importType(path, ps, d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return deepCopyMap(ps), nil
	}
	p := propschema.New(name, t)
	if nullable, _ := ps["nullable"].(bool); nullable {
		p.Nullable()
	}

	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := ps[k]
		switch k {
		case "type", "nullable", "properties", "required":
		case "description":
			if s, ok := v.(string); ok {
				p.Description(s)
			}
		case "default":
			p.Default(deepCopyValue(v))
		case "enum":
			if list, ok := v.([]any); ok {
				p.Enum(list...)
			}
		case "format":
			if s, ok := v.(string); ok {
				p.Format(s)
			}
		case "minimum", "maximum":
			f, ok := propschema.AsFloat(v)
			if !ok {
				if err := d.unsupported("%s: %s must be a number", path, k); err != nil {
					return nil, err
				}
				continue
			}
			if k == "minimum" {
				p.Minimum(f)
			} else {
				p.Maximum(f)
			}
		case "pattern":
			s, ok := v.(string)
			if !ok {
				if err := d.unsupported("%s: pattern must be a string", path); err != nil {
					return nil, err
				}
				continue
			}
			if _, err := regexp.Compile(s); err != nil {
				if err := d.unsupported("%s: pattern %q does not compile: %v", path, s, err); err != nil {
					return nil, err
				}
				continue
			}
			p.Pattern(s)
		case "minLength", "minItems", "maxLength", "maxItems":
			f, ok := propschema.AsFloat(v)
			if !ok {
				if err := d.unsupported("%s: %s must be a number", path, k); err != nil {
					return nil, err
				}
				continue
			}
			rule := "min:"
			if strings.HasPrefix(k, "max") {
				rule = "max:"
			}
			p.AddRule(rule + strconv.FormatFloat(f, 'f', -1, 64))
		case "items":
			item, ok := v.(map[string]any)
			if !ok {
				if err := d.unsupported("%s: tuple items are not supported", path); err != nil {
					return nil, err
				}
				continue
			}
			if t.Primary() != propschema.TagArray {
				if err := d.unsupported("%s: items on non-array type %s", path, t); err != nil {
					return nil, err
				}
				continue
			}
			node, err := importNode(path+"[]", name+"_item", item, d)
			if err != nil {
				return nil, err
			}
			p.Items(node)
		case "title":
			p.AddAttribute(k, v)
		default:
			if strings.HasPrefix(k, "x-kubernetes-") {
				p.AddAttribute(k, deepCopyValue(v))
				continue
			}
			if err := d.unsupported("%s: keyword %q kept as attribute", path, k); err != nil {
				return nil, err
			}
			p.AddAttribute(k, deepCopyValue(v))
		}
	}

	if _, ok := ps["properties"]; ok && t.Primary() == propschema.TagObject {
		children, err := importProperties(path, ps, d)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			switch v := c.value.(type) {
			case *propschema.Property:
				p.AddProperty(v)
			case map[string]any:
				p.AddRawProperty(c.name, v)
			}
		}
	}
	return p, nil
}

// importType reads "type", inferring it from structure when absent.
// x-kubernetes-int-or-string maps to the union [integer, string].
func importType(path string, ps map[string]any, d *simpleDiag) (propschema.Type, bool, error) {
	if ios, _ := ps["x-kubernetes-int-or-string"].(bool); ios {
		return propschema.Union(propschema.TagInteger, propschema.TagString), true, nil
	}
	raw, ok := ps["type"]
	if !ok {
		switch {
		case ps["properties"] != nil:
			return propschema.Single(propschema.TagObject), true, nil
		case ps["items"] != nil:
			return propschema.Single(propschema.TagArray), true, nil
		case ps["x-kubernetes-preserve-unknown-fields"] == true:
			return propschema.Single(propschema.TagObject), true, nil
		}
		return propschema.Type{}, false, nil
	}
	t, err := propschema.ParseType(raw)
	if err != nil {
		if err := d.unsupported("%s: %v", path, err); err != nil {
			return propschema.Type{}, false, err
		}
		return propschema.Type{}, false, nil
	}
	return t, true, nil
}

// extractRequiredNames retrieves property names listed under required.
func extractRequiredNames(doc map[string]any) []string {
	req, _ := doc["required"].([]any)
	var names []string
	for _, r := range req {
		if s, ok := r.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
