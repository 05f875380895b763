package kubeopenapi

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	propschema "github.com/reoring/propschema"
)

// ImportYAMLForCRDKind scans a multi-document YAML (e.g., CRD bundle) and imports
// the first CustomResourceDefinition matching the given spec.names.kind.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (*propschema.PropertyBuilder, Diag, error) {
	return importYAML(data, opts, func(m map[string]any) bool {
		spec, _ := m["spec"].(map[string]any)
		names, _ := spec["names"].(map[string]any)
		k, _ := names["kind"].(string)
		return k == kind
	}, "kubeopenapi: CRD kind not found in YAML bundle")
}

// ImportYAMLForCRDName scans a multi-document YAML and imports the CRD
// with given metadata.name.
func ImportYAMLForCRDName(data []byte, name string, opts Options) (*propschema.PropertyBuilder, Diag, error) {
	return importYAML(data, opts, func(m map[string]any) bool {
		meta, _ := m["metadata"].(map[string]any)
		n, _ := meta["name"].(string)
		return n == name
	}, "kubeopenapi: CRD name not found in YAML bundle")
}

// ImportYAML imports a single YAML document holding a schema or a CRD.
func ImportYAML(data []byte, opts Options) (*propschema.PropertyBuilder, Diag, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &simpleDiag{}, err
	}
	m := yamlAnyToStringMap(node)
	if m == nil {
		return nil, &simpleDiag{}, errors.New("kubeopenapi: YAML root must be a mapping")
	}
	return Import(m, opts)
}

func importYAML(data []byte, opts Options, match func(map[string]any) bool, notFound string) (*propschema.PropertyBuilder, Diag, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &simpleDiag{}, err
		}
		m := yamlAnyToStringMap(node)
		if m == nil {
			continue
		}
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" {
			continue
		}
		if match(m) {
			return Import(m, opts)
		}
	}
	return nil, &simpleDiag{}, errors.New(notFound)
}

// yamlAnyToStringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func yamlAnyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return yamlAnyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
