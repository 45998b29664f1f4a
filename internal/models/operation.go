package models

import "strings"

// Parameter locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InCookie = "cookie"
)

// Shape tells how a parameter or request body declares its schema.
type Shape uint8

const (
	// ShapeInvalid means the declaration could not be resolved; see ShapeFault.
	ShapeInvalid Shape = iota
	ShapeSchema
	ShapeContent
)

// ShapeFault records why a declaration resolved to ShapeInvalid.
type ShapeFault uint8

const (
	FaultNone ShapeFault = iota
	FaultSchemaAndContent
	FaultNoSchemaOrContent
	FaultMediaTypeCount
	FaultMediaTypeSchemaMissing
)

// MediaType is one entry of a content map.
type MediaType struct {
	Name       string
	Schema     *Schema
	Example    any
	HasExample bool
	// Examples maps example name to its value; ExampleNames keeps declaration order.
	Examples     map[string]any
	ExampleNames []string
	// ExampleConflict is set when both example and examples were declared.
	ExampleConflict bool
}

// Parameter is a normalized Parameter Object. Exactly one of Schema and
// Content is set when Shape is valid.
type Parameter struct {
	Name     string
	In       string
	Required bool

	Example      any
	HasExample   bool
	Examples     map[string]any
	ExampleNames []string
	// ExampleConflict is set when both example and examples were declared.
	ExampleConflict bool

	Shape          Shape
	Fault          ShapeFault
	MediaTypeCount int
	Schema         *Schema
	Content        *MediaType
}

// ResolvedSchema returns the schema the parameter's values are matched against.
func (p *Parameter) ResolvedSchema() *Schema {
	switch p.Shape {
	case ShapeSchema:
		return p.Schema
	case ShapeContent:
		return p.Content.Schema
	}
	return nil
}

// IsAccept reports whether p is the Accept request header.
func (p *Parameter) IsAccept() bool {
	return p.In == InHeader && strings.EqualFold(p.Name, "Accept")
}

// RequestBody is a normalized Request Body Object.
type RequestBody struct {
	Required bool
	Content  []MediaType

	Shape Shape
	Fault ShapeFault
	Media *MediaType
}

// ResolvedSchema returns the schema of the single resolved media type.
func (b *RequestBody) ResolvedSchema() *Schema {
	if b == nil || b.Shape != ShapeContent {
		return nil
	}
	return b.Media.Schema
}

// Response is one entry of an operation's responses map.
type Response struct {
	// Status is the responses map key: "200", "2XX" or "default".
	Status  string
	Content []MediaType
}

// SecurityRequirement lists scheme names that must all be satisfied. An empty
// requirement allows anonymous access.
type SecurityRequirement []string

// Operation is the normalized view of one method+path combination. It is
// built once by the parser and never mutated afterwards.
type Operation struct {
	ID string
	// OriginalID is the declared operationId when normalization changed it.
	OriginalID string
	Method     string
	Path       string
	Tags       []string

	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
	Security    []SecurityRequirement
}

// DisplayID returns the declared operation id when known, else the normalized one.
func (o *Operation) DisplayID() string {
	if o.OriginalID != "" {
		return o.OriginalID
	}
	return o.ID
}

// SecurityScheme is an entry of components.securitySchemes.
type SecurityScheme struct {
	Name string
	// Type is apiKey, http, oauth2 or openIdConnect.
	Type string
	// In and ParamName locate apiKey credentials.
	In        string
	ParamName string
	// Scheme is the http auth scheme, e.g. bearer or basic.
	Scheme string
}

// Server is an entry of the document's servers list.
type Server struct {
	URL string
	// Variables maps a server variable to its default value.
	Variables map[string]string
}
