// Package generator derives test scenarios from the examples an OpenAPI
// document declares for an operation's parameters and request body.
package generator

import (
	"github.com/moamenhredeen/oastest/internal/models"
	"github.com/moamenhredeen/oastest/internal/validation"
)

// Generator builds example groups, request body skeletons and scenarios.
// It holds no state; one Generator may serve any number of goroutines.
type Generator struct{}

// NewGenerator creates a new generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Scenarios returns the cross product of the operation's example groups and
// request body skeletons. An operation without parameters and body yields a
// single "default" scenario.
func (g *Generator) Scenarios(op *models.Operation) []models.Scenario {
	groups := g.ExampleGroups(op)
	bodies := g.RequestBodies(op)

	scenarios := make([]models.Scenario, 0, len(groups)*len(bodies))
	for _, group := range groups {
		for _, body := range bodies {
			scenarios = append(scenarios, models.Scenario{
				Operation: op,
				Group:     group,
				Body:      body,
			})
		}
	}
	return scenarios
}

// ExampleGroups returns one group per example name declared on any parameter,
// in first-seen order, followed by the "default" group.
func (g *Generator) ExampleGroups(op *models.Operation) []models.ExampleGroup {
	required := requiredExamples(op)

	defaults := make(map[string]any, len(required))
	for name, v := range required {
		defaults[name] = v
	}
	for i := range op.Parameters {
		p := &op.Parameters[i]
		if p.Required {
			continue
		}
		if v, ok := plainExample(p); ok {
			defaults[p.Name] = v
		}
	}

	var groups []models.ExampleGroup
	for _, name := range groupNames(op) {
		if name == models.DefaultGroup {
			continue
		}
		groups = append(groups, models.ExampleGroup{
			Name:   name,
			Values: groupValues(op, name, required),
		})
	}

	return append(groups, models.ExampleGroup{
		Name:   models.DefaultGroup,
		Values: groupValues(op, models.DefaultGroup, defaults),
	})
}

// groupNames returns the union of examples keys over all parameters.
func groupNames(op *models.Operation) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(keys []string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}

	for i := range op.Parameters {
		p := &op.Parameters[i]
		add(p.ExampleNames)
		if p.Content != nil {
			add(p.Content.ExampleNames)
		}
	}
	return names
}

// groupValues assigns each parameter its value for the named group, falling
// back to pool. Parameters with neither are left out.
func groupValues(op *models.Operation, group string, pool map[string]any) map[string]any {
	values := make(map[string]any)
	for i := range op.Parameters {
		p := &op.Parameters[i]
		if v, ok := namedExample(p, group); ok {
			values[p.Name] = v
			continue
		}
		if v, ok := pool[p.Name]; ok {
			values[p.Name] = v
		}
	}
	return values
}

// requiredExamples resolves a value for every required parameter that has one.
func requiredExamples(op *models.Operation) map[string]any {
	out := make(map[string]any)
	for i := range op.Parameters {
		p := &op.Parameters[i]
		if !p.Required {
			continue
		}
		if v, ok := ParameterExample(p); ok {
			out[p.Name] = v
		}
	}
	return out
}

// ParameterExample resolves the single best example of a parameter. The
// parameter's own example wins over its media type's, which wins over the
// schema's.
func ParameterExample(p *models.Parameter) (any, bool) {
	if p.HasExample {
		return p.Example, true
	}
	if v, ok := p.Examples[models.DefaultGroup]; ok {
		return v, true
	}

	if p.Content != nil {
		if v, ok := mediaExample(p.Content); ok {
			return v, true
		}
	}

	if schema := schemaOf(p); schema != nil && schema.HasExample {
		return schema.Example, true
	}
	return nil, false
}

// plainExample returns the single-valued example of an optional parameter.
func plainExample(p *models.Parameter) (any, bool) {
	if p.HasExample {
		return p.Example, true
	}
	if p.Content != nil && p.Content.HasExample {
		return p.Content.Example, true
	}
	return nil, false
}

func namedExample(p *models.Parameter, name string) (any, bool) {
	if v, ok := p.Examples[name]; ok {
		return v, true
	}
	if p.Content != nil {
		if v, ok := p.Content.Examples[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func mediaExample(media *models.MediaType) (any, bool) {
	if media.HasExample {
		return media.Example, true
	}
	v, ok := media.Examples[models.DefaultGroup]
	return v, ok
}

func schemaOf(p *models.Parameter) *models.Schema {
	if p.Schema != nil {
		return p.Schema
	}
	if p.Content != nil {
		return p.Content.Schema
	}
	return nil
}

// RequestBodies returns the request body skeletons of an operation: a single
// "none" skeleton when the body is absent or optional, else "required-only"
// and "default", collapsed into "default" when both carry the same values.
func (g *Generator) RequestBodies(op *models.Operation) []models.ExampleRequestBody {
	none := []models.ExampleRequestBody{{Name: models.BodyNone, Value: map[string]any{}}}

	body := op.RequestBody
	if body == nil || !body.Required {
		return none
	}

	media := body.Media
	if media == nil && len(body.Content) > 0 {
		media = &body.Content[0]
	}
	if media == nil {
		return none
	}

	example, _ := objectExample(media)
	schema := media.Schema

	if schema == nil || schema.Properties == nil {
		value := make(map[string]any, len(example))
		for k, v := range example {
			value[k] = v
		}
		return []models.ExampleRequestBody{{Name: models.BodyDefault, Value: value}}
	}

	requiredOnly := make(map[string]any)
	full := make(map[string]any)
	for _, name := range schema.PropertyNames() {
		v, ok := propertyExample(name, schema.Properties[name], example)
		if !ok {
			continue
		}
		if schema.IsRequired(name) {
			requiredOnly[name] = v
		}
		full[name] = v
	}

	if validation.Equal(requiredOnly, full) {
		return []models.ExampleRequestBody{{Name: models.BodyDefault, Value: full}}
	}
	return []models.ExampleRequestBody{
		{Name: models.BodyRequiredOnly, Value: requiredOnly},
		{Name: models.BodyDefault, Value: full},
	}
}

// objectExample returns the media type's example when it is a JSON object.
func objectExample(media *models.MediaType) (map[string]any, bool) {
	v, ok := mediaExample(media)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// propertyExample resolves a property value from the body's object example,
// else from the property schema's own example.
func propertyExample(name string, prop *models.Schema, example map[string]any) (any, bool) {
	if v, ok := example[name]; ok {
		return v, true
	}
	if prop != nil && prop.HasExample {
		return prop.Example, true
	}
	return nil, false
}
