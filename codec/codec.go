package codec

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	propschema "github.com/reoring/propschema"
)

// Format names a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ErrUnknownFormat is returned for file extensions or format names the
// codec does not handle.
var ErrUnknownFormat = errors.New("codec: unknown format")

// FormatFor picks a format from a file name extension.
func FormatFor(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
}

// DecodeBuilder reads a PropertyBuilder document. Top-level key order is
// kept for every format.
func DecodeBuilder(f Format, data []byte) (*propschema.PropertyBuilder, error) {
	doc, order, err := decodeOrdered(f, data)
	if err != nil {
		return nil, err
	}
	return propschema.BuilderFromArray(doc, order)
}

// DecodeRecord reads an input record. JSON numbers are kept as json.Number
// so integers stay integers.
func DecodeRecord(f Format, data []byte) (map[string]any, error) {
	doc, _, err := decodeOrdered(f, data)
	return doc, err
}

// EncodeBuilder writes the document of b in insertion order.
func EncodeBuilder(f Format, b *propschema.PropertyBuilder) ([]byte, error) {
	switch f {
	case JSON:
		return json.MarshalIndent(b, "", "  ")
	case YAML:
		root := &yaml.Node{Kind: yaml.MappingNode}
		doc := b.ToArray()
		for _, name := range b.Names() {
			var v yaml.Node
			if err := v.Encode(doc[name]); err != nil {
				return nil, fmt.Errorf("codec: yaml %q: %w", name, err)
			}
			root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &v)
		}
		return yaml.Marshal(root)
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(b.ToArray()); err != nil {
			return nil, fmt.Errorf("codec: toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Encode writes any document value (for example compiler output).
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		return json.MarshalIndent(v, "", "  ")
	case YAML:
		return yaml.Marshal(v)
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("codec: toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func decodeOrdered(f Format, data []byte) (map[string]any, []string, error) {
	switch f {
	case JSON:
		return decodeJSON(data)
	case YAML:
		return decodeYAML(data)
	case TOML:
		return decodeTOML(data)
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// decodeJSON walks the top-level object with the token API to record key
// order, decoding each value in full.
func decodeJSON(data []byte) (map[string]any, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("codec: json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("codec: json: top level must be an object")
	}
	out := map[string]any{}
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("codec: json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("codec: json: expected key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("codec: json %q: %w", key, err)
		}
		if _, dup := out[key]; !dup {
			order = append(order, key)
		}
		out[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("codec: json: %w", err)
	}
	return out, order, nil
}

func decodeYAML(data []byte) (map[string]any, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("codec: yaml: %w", err)
	}
	if root.Kind == 0 {
		return map[string]any{}, nil, nil
	}
	n := &root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("codec: yaml: top level must be a mapping")
	}
	out := map[string]any{}
	var order []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var v any
		if err := n.Content[i+1].Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("codec: yaml %q: %w", key, err)
		}
		if _, dup := out[key]; !dup {
			order = append(order, key)
		}
		out[key] = yamlNormalizeValue(v)
	}
	return out, order, nil
}

func decodeTOML(data []byte) (map[string]any, []string, error) {
	out := map[string]any{}
	md, err := toml.Decode(string(data), &out)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: toml: %w", err)
	}
	var order []string
	seen := map[string]struct{}{}
	for _, k := range md.Keys() {
		if len(k) == 0 {
			continue
		}
		if _, ok := seen[k[0]]; ok {
			continue
		}
		seen[k[0]] = struct{}{}
		order = append(order, k[0])
	}
	return tomlNormalize(out).(map[string]any), order, nil
}

// yamlNormalizeValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively.
func yamlNormalizeValue(v any) any {
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
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
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

// tomlNormalize turns array-of-tables ([]map[string]any) into []any so the
// result matches the JSON and YAML shapes.
func tomlNormalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = tomlNormalize(vv)
		}
		return t
	case []map[string]any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = tomlNormalize(t[i])
		}
		return arr
	case []any:
		for i := range t {
			t[i] = tomlNormalize(t[i])
		}
		return t
	default:
		return v
	}
}
