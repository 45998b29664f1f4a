package models

import "sort"

// Schema is the subset of an OpenAPI Schema Object the matcher understands.
// Zero values mean "not declared": an empty Type, a nil Enum, a nil Properties.
type Schema struct {
	Type     string
	Nullable bool
	Enum     []any
	Items    *Schema

	Properties    map[string]*Schema
	PropertyOrder []string
	Required      []string

	Example    any
	HasExample bool
}

// IsRequired reports whether name is listed in the schema's required array.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// PropertyNames returns declared property names in declaration order.
func (s *Schema) PropertyNames() []string {
	if len(s.PropertyOrder) == len(s.Properties) {
		return s.PropertyOrder
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
