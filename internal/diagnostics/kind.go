package diagnostics

// Kind identifies a diagnostic template.
type Kind uint8

const (
	NullValueNotAllowed Kind = iota + 1
	TypeMismatch
	DuplicateEnum
	EnumMismatch
	ItemSchemaMissing
	PropertySchemaMissing
	PropertiesMismatch
	RequiredProperty
	MissingProperties
	EmptyArray

	InvalidParameterObject
	InvalidParameterContent
	ParameterExampleConflict
	InvalidRequestBodyContent
	RequiredParameterMissing

	InvalidResponse
	RequestFailed
	StatusCodeMismatch
	ContentTypeMismatch
	MediaTypeMismatch
	UnableToParseResponseBody

	UnexpectedError
)

type entry struct {
	name     string
	severity Severity
	template string
}

// registry maps each kind to its severity and text template. Placeholders are
// positional: {0} is the first argument passed to New.
var registry = map[Kind]entry{
	NullValueNotAllowed:   {"NullValueNotAllowed", SevError, "Actual value was null. Schema does not allow null values."},
	TypeMismatch:          {"TypeMismatch", SevError, "Actual type did not match schema. Schema type: {0}. Actual type: {1}."},
	DuplicateEnum:         {"DuplicateEnum", SevError, "Schema enum contains duplicate values. Enum values: {0}."},
	EnumMismatch:          {"EnumMismatch", SevError, "Actual value does not match schema enum. Enum values: {0}. Actual value: {1}."},
	ItemSchemaMissing:     {"ItemSchemaMissing", SevError, "The items property is required for array schemas."},
	PropertySchemaMissing: {"PropertySchemaMissing", SevError, "The properties property is required for object schemas."},
	PropertiesMismatch:    {"PropertiesMismatch", SevError, "Actual object contains properties not present in schema. Unexpected properties: {0}.{1}"},
	RequiredProperty:      {"RequiredProperty", SevError, "Actual object missing required property: {0}."},
	MissingProperties:     {"MissingProperties", SevWarning, "Warning: This object is missing non-required properties that were unable to be validated, including {0}."},
	EmptyArray:            {"EmptyArray", SevWarning, "Warning: This array was empty so its items could not be validated."},

	InvalidParameterObject:    {"InvalidParameterObject", SevError, "Parameter object must contain exactly one of 'schema' or 'content'."},
	InvalidParameterContent:   {"InvalidParameterContent", SevError, "Parameter content object must contain exactly one media type with a schema. Media types found: {0}."},
	ParameterExampleConflict:  {"ParameterExampleConflict", SevError, "Parameter object may contain 'example' or 'examples', but not both."},
	InvalidRequestBodyContent: {"InvalidRequestBodyContent", SevError, "Request body content object must contain exactly one media type with a schema. Media types found: {0}."},
	RequiredParameterMissing:  {"RequiredParameterMissing", SevError, "Missing required parameters: {0}."},

	InvalidResponse:           {"InvalidResponse", SevError, "Response status code was a non 2XX value: {0}."},
	RequestFailed:             {"RequestFailed", SevError, "Request could not be completed: {0}."},
	StatusCodeMismatch:        {"StatusCodeMismatch", SevError, "Response status code not present in schema. Actual status code: {0}."},
	ContentTypeMismatch:       {"ContentTypeMismatch", SevError, "Response content type not present in schema. Actual content type: {0}."},
	MediaTypeMismatch:         {"MediaTypeMismatch", SevError, "Response content type does not match the Accept header. Accept: {0}. Actual content type: {1}."},
	UnableToParseResponseBody: {"UnableToParseResponseBody", SevWarning, "Warning: Unable to parse response body. Response content type: {0}."},

	UnexpectedError: {"UnexpectedError", SevError, "Unexpected error while running scenario: {0}."},
}

func (k Kind) String() string {
	if e, ok := registry[k]; ok {
		return e.name
	}
	return "Unknown"
}

// Severity returns the fixed severity of the kind.
func (k Kind) Severity() Severity {
	return registry[k].severity
}
