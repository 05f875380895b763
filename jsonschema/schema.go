package jsonschema

import (
	"bytes"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	propschema "github.com/reoring/propschema"
)

// Draft2020 is the $schema URI written by FromDocument.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// Schema is a standard JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Type        any    `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// String
	Pattern string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}

// FromDocument converts a compiler document ({type: object, properties,
// required}) or a single property document into standard JSON Schema.
// Rule tokens and conditional rules have no standard form and are dropped,
// except "email" which becomes format "email" when no format is set.
func FromDocument(doc map[string]any) *Schema {
	s := convert(doc)
	s.Schema = Draft2020
	if req, ok := doc[propschema.KeyRequired].([]string); ok && len(req) > 0 {
		s.Required = append([]string(nil), req...)
	}
	return s
}

func convert(doc map[string]any) *Schema {
	s := &Schema{Type: doc[propschema.KeyType]}
	if v, ok := doc[propschema.KeyReference].(string); ok {
		s.Ref = v
	}
	if v, ok := doc["title"].(string); ok {
		s.Title = v
	}
	if v, ok := doc[propschema.KeyDescription].(string); ok {
		s.Description = v
	}
	if v, ok := doc[propschema.KeyFormat].(string); ok {
		s.Format = v
	}
	if v, ok := doc[propschema.KeyDefault]; ok {
		s.Default = v
	}
	if v, ok := doc["enum"].([]any); ok {
		s.Enum = v
	}
	if v, ok := propschema.AsFloat(doc[propschema.KeyMinimum]); ok {
		s.Minimum = &v
	}
	if v, ok := propschema.AsFloat(doc[propschema.KeyMaximum]); ok {
		s.Maximum = &v
	}
	if v, ok := doc[propschema.KeyPattern].(string); ok {
		s.Pattern = v
	}
	if s.Format == "" && hasToken(doc, "email") {
		s.Format = "email"
	}
	if props, ok := doc[propschema.KeyProperties].(map[string]any); ok {
		s.Properties = make(map[string]*Schema, len(props))
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, ok := props[name].(map[string]any)
			if !ok {
				continue
			}
			s.Properties[name] = convert(child)
			if r, ok := child[propschema.KeyRequired].(bool); ok && r {
				s.Required = append(s.Required, name)
			}
		}
	}
	if items, ok := doc[propschema.KeyItems].(map[string]any); ok {
		s.Items = convert(items)
	}
	return s
}

func hasToken(doc map[string]any, token string) bool {
	switch rules := doc[propschema.KeyRules].(type) {
	case []string:
		for _, r := range rules {
			if r == token {
				return true
			}
		}
	case []any:
		for _, r := range rules {
			if r == token {
				return true
			}
		}
	}
	return false
}

// Compile checks s against the draft 2020-12 metaschema and returns the
// compiled validator.
func Compile(s *Schema) (*jsv.Schema, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: marshal: %w", err)
	}
	const url = "mem://propschema/schema.json"
	c := jsv.NewCompiler()
	c.Draft = jsv.Draft2020
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	return compiled, nil
}
