package validation

import (
	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

// ValidateRequest runs the request-side checks of a scenario: parameter
// shapes, request body shape, and the examples the scenario will send. None of
// them touches the network.
func ValidateRequest(scenario models.Scenario, set *diagnostics.Set) {
	CheckParameterShapes(scenario.Operation, set)
	CheckRequestBodyShape(scenario.Operation, set)
	CheckExamples(scenario, set)
}

// CheckParameterShapes reports parameters that do not resolve to exactly one
// of schema or content.
func CheckParameterShapes(op *models.Operation, set *diagnostics.Set) {
	for i := range op.Parameters {
		p := &op.Parameters[i]
		path := parameterPath(p)

		switch p.Fault {
		case models.FaultSchemaAndContent, models.FaultNoSchemaOrContent:
			set.Report(diagnostics.InvalidParameterObject, path)
		case models.FaultMediaTypeCount, models.FaultMediaTypeSchemaMissing:
			set.Report(diagnostics.InvalidParameterContent, path, p.MediaTypeCount)
		}

		if p.ExampleConflict || (p.Content != nil && p.Content.ExampleConflict) {
			set.Report(diagnostics.ParameterExampleConflict, path)
		}
	}
}

// CheckRequestBodyShape reports a request body whose content does not resolve
// to exactly one media type with a schema.
func CheckRequestBodyShape(op *models.Operation, set *diagnostics.Set) {
	body := op.RequestBody
	if body == nil || body.Shape == models.ShapeContent {
		return
	}
	set.Report(diagnostics.InvalidRequestBodyContent, requestBodyPath, len(body.Content))
}

// CheckExamples reports required parameters the scenario has no value for and
// matches every value it does have against the declared schema.
func CheckExamples(scenario models.Scenario, set *diagnostics.Set) {
	op := scenario.Operation

	var missing []string
	for i := range op.Parameters {
		p := &op.Parameters[i]
		value, ok := scenario.Group.Value(p.Name)
		if !ok {
			if p.Required {
				missing = append(missing, p.Name)
			}
			continue
		}
		if schema := p.ResolvedSchema(); schema != nil {
			Match(value, schema, parameterPath(p), set)
		}
	}
	if len(missing) > 0 {
		set.Report(diagnostics.RequiredParameterMissing, nil, missing)
	}

	if scenario.Body.Name == "" || scenario.Body.Name == models.BodyNone {
		return
	}
	if schema := op.RequestBody.ResolvedSchema(); schema != nil {
		Match(scenario.Body.Value, schema, requestBodyPath, set)
	}
}

var requestBodyPath = []string{"requestBody"}

func parameterPath(p *models.Parameter) []string {
	return []string{"parameters", p.Name}
}
