package kubeopenapi

import "strings"

var refPrefixes = []string{"#/$defs/", "#/definitions/"}

// extractDefs returns the local definitions of the document ($defs, or the
// older definitions).
func extractDefs(doc map[string]any) map[string]any {
	if m, ok := doc["$defs"].(map[string]any); ok {
		return m
	}
	if m, ok := doc["definitions"].(map[string]any); ok {
		return m
	}
	return nil
}

// resolveRefsInPlace expands local $refs found under properties and items.
func resolveRefsInPlace(node map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) error {
	if node == nil || defs == nil {
		return nil
	}
	if pm, ok := node["properties"].(map[string]any); ok {
		for k, raw := range pm {
			if sch, ok := raw.(map[string]any); ok {
				if err := resolveOne(sch, defs, d, visited); err != nil {
					return err
				}
				pm[k] = sch
			}
		}
	}
	if it, ok := node["items"].(map[string]any); ok {
		return resolveOne(it, defs, d, visited)
	}
	return nil
}

// resolveOne merges the referenced definition into s. Keys already present
// in s win.
func resolveOne(s map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) error {
	ref, ok := s["$ref"].(string)
	if !ok {
		return resolveRefsInPlace(s, defs, d, visited)
	}
	key := ""
	for _, p := range refPrefixes {
		if strings.HasPrefix(ref, p) {
			key = strings.TrimPrefix(ref, p)
		}
	}
	if key == "" {
		return d.unsupported("$ref %q not supported (local definitions only)", ref)
	}
	base, ok := defs[key].(map[string]any)
	if !ok {
		return d.unsupported("$ref to unknown definition %q", key)
	}
	if visited[key] {
		return d.unsupported("cyclic $ref at %q (left unexpanded)", key)
	}
	visited[key] = true
	resolved := deepCopyMap(base)
	err := resolveRefsInPlace(resolved, defs, d, visited)
	delete(visited, key)
	if err != nil {
		return err
	}
	delete(s, "$ref")
	for k, v := range resolved {
		if _, exists := s[k]; !exists {
			s[k] = v
		}
	}
	return nil
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopyValue(t[i])
		}
		return out
	}
	return v
}
