// Package validation matches example and response values against OpenAPI
// schemas and checks the request-side shape of operations.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

// Match checks value against schema and adds every finding to set. It never
// fails on structural mismatches; path is not modified.
//
// Checks run in a fixed order: null, type, enum, then descent into arrays and
// objects. A null value or a type mismatch stops the checks for that value.
func Match(value any, schema *models.Schema, path []string, set *diagnostics.Set) {
	if schema == nil {
		return
	}

	if value == nil {
		if !schema.Nullable {
			set.Report(diagnostics.NullValueNotAllowed, path)
		}
		return
	}

	if schema.Type != "" && !matchesType(value, schema.Type) {
		set.Report(diagnostics.TypeMismatch, path, schema.Type, kindOf(value))
		return
	}

	if schema.Enum != nil {
		matchEnum(value, schema.Enum, path, set)
	}

	switch v := value.(type) {
	case []any:
		matchArray(v, schema, path, set)
	case map[string]any:
		matchObject(v, schema, path, set)
	}
}

func matchEnum(value any, enum []any, path []string, set *diagnostics.Set) {
	if hasDuplicates(enum) {
		set.Report(diagnostics.DuplicateEnum, path, enum)
	}
	for _, candidate := range enum {
		if Equal(candidate, value) {
			return
		}
	}
	set.Report(diagnostics.EnumMismatch, path, enum, value)
}

func matchArray(items []any, schema *models.Schema, path []string, set *diagnostics.Set) {
	if schema.Items == nil {
		set.Report(diagnostics.ItemSchemaMissing, path)
		return
	}
	if len(items) == 0 {
		set.Report(diagnostics.EmptyArray, path)
		return
	}
	// every element shares the item schema, so indices stay out of the path
	for _, item := range items {
		Match(item, schema.Items, path, set)
	}
}

func matchObject(obj map[string]any, schema *models.Schema, path []string, set *diagnostics.Set) {
	if schema.Properties == nil {
		set.Report(diagnostics.PropertySchemaMissing, path)
		return
	}

	declared := schema.PropertyNames()

	var unexpected []string
	for key := range obj {
		if _, ok := schema.Properties[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}
	sort.Strings(unexpected)

	// names reported in the PropertiesMismatch clause are not repeated as
	// MissingProperties
	folded := make(map[string]bool)
	if len(unexpected) > 0 {
		var absent []string
		for _, name := range declared {
			if _, ok := obj[name]; !ok {
				absent = append(absent, name)
				folded[name] = true
			}
		}
		clause := ""
		if len(absent) > 0 {
			clause = fmt.Sprintf(" Schema properties not found: %s.", strings.Join(absent, ", "))
		}
		set.Report(diagnostics.PropertiesMismatch, path, unexpected, clause)
	}

	for _, name := range schema.Required {
		if _, ok := obj[name]; !ok {
			set.Report(diagnostics.RequiredProperty, path, name)
		}
	}

	var optionalMissing []string
	for _, name := range declared {
		if _, ok := obj[name]; ok || schema.IsRequired(name) || folded[name] {
			continue
		}
		optionalMissing = append(optionalMissing, name)
	}
	if len(optionalMissing) > 0 {
		set.Report(diagnostics.MissingProperties, path, optionalMissing)
	}

	for _, name := range declared {
		v, ok := obj[name]
		if !ok {
			continue
		}
		Match(v, schema.Properties[name], appendPath(path, name), set)
	}
}

// appendPath returns a new path so sibling branches never share a backing array.
func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func matchesType(value any, declared string) bool {
	switch declared {
	case "array":
		_, ok := value.([]any)
		return ok
	case "integer":
		f, ok := toFloat(value)
		return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return kindOf(value) == declared
}

// kindOf names the JSON kind of a decoded value.
func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toFloat(value); ok {
		return "number"
	}
	return fmt.Sprintf("%T", value)
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Equal reports deep equality of two decoded values. Numbers compare by value
// regardless of their Go type.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func hasDuplicates(values []any) bool {
	for i := range values {
		for j := i + 1; j < len(values); j++ {
			if Equal(values[i], values[j]) {
				return true
			}
		}
	}
	return false
}
