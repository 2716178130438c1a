package servicemodel

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// mergeV2BodyParameters rewrites Swagger 2.0 operations that declare more than
// one body parameter, which openapi2conv rejects, into a single body parameter
// whose object schema has one property per original parameter.
//
// It returns the possibly modified bytes and whether anything changed. On error
// the original bytes are returned unchanged.
func mergeV2BodyParameters(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}

	modified := false
	for _, rawItem := range paths {
		item, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}
		for method, rawOp := range item {
			switch strings.ToLower(method) {
			case "get", "post", "put", "delete", "patch", "options", "head":
			default:
				continue
			}
			op, ok := rawOp.(map[string]any)
			if !ok {
				continue
			}
			params, ok := op["parameters"].([]any)
			if !ok || countBodyParameters(params) < 2 {
				continue
			}
			op["parameters"] = mergeBodyParameters(params)
			modified = true
		}
	}

	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func countBodyParameters(params []any) int {
	n := 0
	for _, p := range params {
		if pm, _ := p.(map[string]any); pm != nil && strings.EqualFold(asString(pm["in"]), "body") {
			n++
		}
	}
	return n
}

func mergeBodyParameters(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil || !strings.EqualFold(asString(pm["in"]), "body") {
			rest = append(rest, p)
			continue
		}
		name := asString(pm["name"])
		if name == "" {
			name = "field"
		}
		schema, _ := pm["schema"].(map[string]any)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	bodySchema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		bodySchema["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": bodySchema}
	return append([]any{merged}, rest...)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
