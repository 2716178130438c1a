package servicemodel

import "gopkg.in/yaml.v3"

// propertyOrder maps a named schema to the declaration index of each of its
// properties. kin-openapi exposes properties as Go maps, so the order is read
// from the raw document instead.
type propertyOrder map[string]map[string]int

// readPropertyOrder walks components.schemas (OpenAPI 3) or definitions
// (Swagger 2). Unparseable input yields an empty order; callers fall back to
// name order.
func readPropertyOrder(raw []byte) propertyOrder {
	order := propertyOrder{}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil || len(root.Content) == 0 {
		return order
	}
	doc := root.Content[0]

	schemas := mappingValue(mappingValue(doc, "components"), "schemas")
	if schemas == nil {
		schemas = mappingValue(doc, "definitions")
	}
	if schemas == nil || schemas.Kind != yaml.MappingNode {
		return order
	}
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		name := schemas.Content[i].Value
		order[name] = collectProperties(schemas.Content[i+1], map[string]int{})
	}
	return order
}

// collectProperties records the property keys of a schema node, following
// allOf members in order.
func collectProperties(schema *yaml.Node, into map[string]int) map[string]int {
	if props := mappingValue(schema, "properties"); props != nil && props.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(props.Content); i += 2 {
			key := props.Content[i].Value
			if _, seen := into[key]; !seen {
				into[key] = len(into)
			}
		}
	}
	if allOf := mappingValue(schema, "allOf"); allOf != nil && allOf.Kind == yaml.SequenceNode {
		for _, member := range allOf.Content {
			collectProperties(member, into)
		}
	}
	return into
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
