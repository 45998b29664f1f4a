package models

// Well-known example group and request body skeleton names.
const (
	DefaultGroup     = "default"
	BodyNone         = "none"
	BodyRequiredOnly = "required-only"
	BodyDefault      = "default"
)

// ExampleGroup is a named set of parameter values for one operation.
type ExampleGroup struct {
	Name   string
	Values map[string]any
}

// Value returns the example value for the named parameter.
func (g ExampleGroup) Value(name string) (any, bool) {
	v, ok := g.Values[name]
	return v, ok
}

// ExampleRequestBody is a request body skeleton.
type ExampleRequestBody struct {
	Name  string
	Value map[string]any
}

// Scenario is one test case: an operation run with one example group and one
// request body skeleton.
type Scenario struct {
	Operation *Operation
	Group     ExampleGroup
	Body      ExampleRequestBody
}

// Name returns the display name of the scenario.
func (s Scenario) Name() string {
	if s.Body.Name == "" || s.Body.Name == BodyNone {
		return s.Group.Name
	}
	return s.Group.Name + " – " + s.Body.Name
}
