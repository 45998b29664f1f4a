package parser

import (
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"

	"github.com/moamenhredeen/oastest/internal/models"
)

// schema converts a schema proxy. References are memoized so recursive
// schemas resolve to shared pointers instead of recursing forever.
func (p *Parser) schema(proxy *base.SchemaProxy) *models.Schema {
	if proxy == nil {
		return nil
	}

	ref := ""
	if proxy.IsReference() {
		ref = proxy.GetReference()
		if s, ok := p.schemas[ref]; ok {
			return s
		}
	}

	raw := proxy.Schema()
	if raw == nil {
		return nil
	}

	out := &models.Schema{}
	if ref != "" {
		p.schemas[ref] = out
	}
	p.fillSchema(out, raw)
	return out
}

func (p *Parser) fillSchema(out *models.Schema, raw *base.Schema) {
	out.Type, out.Nullable = schemaType(raw.Type)
	if raw.Nullable != nil && *raw.Nullable {
		out.Nullable = true
	}

	if len(raw.Enum) > 0 {
		out.Enum = make([]any, 0, len(raw.Enum))
		for _, node := range raw.Enum {
			out.Enum = append(out.Enum, decodeNode(node))
		}
	}

	if raw.Items != nil && raw.Items.IsA() {
		out.Items = p.schema(raw.Items.A)
	}

	if raw.Properties != nil {
		out.Properties = make(map[string]*models.Schema)
		for pair := raw.Properties.First(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key()] = p.schema(pair.Value())
			out.PropertyOrder = append(out.PropertyOrder, pair.Key())
		}
	}
	out.Required = append(out.Required, raw.Required...)

	switch {
	case raw.Example != nil:
		out.Example, out.HasExample = decodeNode(raw.Example), true
	case len(raw.Examples) > 0:
		out.Example, out.HasExample = decodeNode(raw.Examples[0]), true
	}

	for _, member := range raw.AllOf {
		mergeAllOf(out, p.schema(member))
	}
}

// mergeAllOf folds an allOf member into out: the type when out declares none,
// its properties and its required names.
func mergeAllOf(out, member *models.Schema) {
	if member == nil || member == out {
		return
	}
	if out.Type == "" {
		out.Type = member.Type
	}
	if member.Properties != nil {
		if out.Properties == nil {
			out.Properties = make(map[string]*models.Schema)
		}
		for _, name := range member.PropertyNames() {
			if _, ok := out.Properties[name]; ok {
				continue
			}
			out.Properties[name] = member.Properties[name]
			out.PropertyOrder = append(out.PropertyOrder, name)
		}
	}
	out.Required = append(out.Required, member.Required...)
}

// schemaType maps a 3.0 type or a 3.1 type array onto a single type name.
// "null" in a type array turns into the nullable flag.
func schemaType(types []string) (string, bool) {
	nullable := false
	var rest []string
	for _, t := range types {
		if t == "null" {
			nullable = true
			continue
		}
		rest = append(rest, t)
	}
	if len(rest) == 1 {
		return rest[0], nullable
	}
	if len(rest) == 0 && nullable {
		return "null", true
	}
	return "", nullable
}

func (p *Parser) mediaTypes(content *orderedmap.Map[string, *v3.MediaType]) []models.MediaType {
	if content == nil {
		return nil
	}
	var out []models.MediaType
	for pair := content.First(); pair != nil; pair = pair.Next() {
		mt := pair.Value()
		if mt == nil {
			continue
		}
		media := models.MediaType{
			Name:   pair.Key(),
			Schema: p.schema(mt.Schema),
		}
		if mt.Example != nil {
			media.Example, media.HasExample = decodeNode(mt.Example), true
		}
		media.Examples, media.ExampleNames = decodeExamples(mt.Examples)
		media.ExampleConflict = media.HasExample && len(media.ExampleNames) > 0
		out = append(out, media)
	}
	return out
}

// decodeExamples flattens an examples map to name -> value, keeping
// declaration order. Examples that only carry an externalValue are skipped.
func decodeExamples(examples *orderedmap.Map[string, *base.Example]) (map[string]any, []string) {
	if examples == nil || examples.Len() == 0 {
		return nil, nil
	}
	values := make(map[string]any, examples.Len())
	var names []string
	for pair := examples.First(); pair != nil; pair = pair.Next() {
		ex := pair.Value()
		if ex == nil || ex.Value == nil {
			continue
		}
		values[pair.Key()] = decodeNode(ex.Value)
		names = append(names, pair.Key())
	}
	return values, names
}

// decodeNode turns a YAML node into the JSON value model: nil, bool,
// float64, string, []any and map[string]any.
func decodeNode(node *yaml.Node) any {
	if node == nil {
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return node.Value
	}
	return normalize(v)
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[toKey(k)] = normalize(e)
		}
		return out
	}
	return v
}

func toKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return yamlScalar(k)
}

func yamlScalar(v any) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\n")
}
