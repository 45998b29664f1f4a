package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

func kinds(messages []*diagnostics.Message) []diagnostics.Kind {
	out := make([]diagnostics.Kind, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Kind)
	}
	return out
}

func match(value any, schema *models.Schema) *diagnostics.Set {
	set := diagnostics.NewSet()
	Match(value, schema, nil, set)
	return set
}

func objectSchema(required []string, props ...string) *models.Schema {
	s := &models.Schema{
		Type:       "object",
		Required:   required,
		Properties: map[string]*models.Schema{},
	}
	for _, p := range props {
		s.Properties[p] = &models.Schema{Type: "string"}
		s.PropertyOrder = append(s.PropertyOrder, p)
	}
	return s
}

func TestMatchNull(t *testing.T) {
	set := match(nil, &models.Schema{Type: "string"})
	if diff := cmp.Diff([]diagnostics.Kind{diagnostics.NullValueNotAllowed}, kinds(set.All())); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	set = match(nil, &models.Schema{Type: "string", Nullable: true, Enum: []any{"a"}})
	if set.Len() != 0 {
		t.Errorf("Expected no diagnostics for nullable schema, got %d", set.Len())
	}
}

func TestMatchTypeMismatchStopsDescent(t *testing.T) {
	set := match(42.0, &models.Schema{Type: "string", Enum: []any{"a"}})

	if diff := cmp.Diff([]diagnostics.Kind{diagnostics.TypeMismatch}, kinds(set.All())); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	want := "Actual type did not match schema. Schema type: string. Actual type: number."
	if got := set.All()[0].Text; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	set = match(map[string]any{"a": 1.0}, &models.Schema{Type: "array"})
	if diff := cmp.Diff([]diagnostics.Kind{diagnostics.TypeMismatch}, kinds(set.All())); diff != "" {
		t.Errorf("object against array schema (-want +got):\n%s", diff)
	}
}

func TestMatchTypes(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		schema string
		ok     bool
	}{
		{"whole float is integer", 5.0, "integer", true},
		{"int is integer", 5, "integer", true},
		{"fraction is not integer", 5.5, "integer", false},
		{"string is not integer", "5", "integer", false},
		{"float is number", 5.5, "number", true},
		{"int is number", 5, "number", true},
		{"bool is boolean", true, "boolean", true},
		{"array is array", []any{}, "array", true},
		{"array is not object", []any{"a"}, "object", false},
		{"map is object", map[string]any{}, "object", true},
		{"map is not array", map[string]any{}, "array", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesType(tt.value, tt.schema); got != tt.ok {
				t.Errorf("matchesType(%v, %s) = %v, want %v", tt.value, tt.schema, got, tt.ok)
			}
		})
	}
}

func TestMatchEnum(t *testing.T) {
	set := match("x", &models.Schema{Type: "string", Enum: []any{"a", "a"}})
	want := []diagnostics.Kind{diagnostics.DuplicateEnum, diagnostics.EnumMismatch}
	if diff := cmp.Diff(want, kinds(set.All())); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	set = match(2, &models.Schema{Enum: []any{1.0, 2.0}})
	if set.Len() != 0 {
		t.Errorf("Expected int 2 to match enum value 2.0, got %d diagnostics", set.Len())
	}

	set = match(map[string]any{"k": []any{1.0}}, &models.Schema{Enum: []any{map[string]any{"k": []any{1}}}, Properties: map[string]*models.Schema{"k": {}}})
	for _, m := range set.All() {
		if m.Kind == diagnostics.EnumMismatch {
			t.Error("Expected deep-equal object to match enum")
		}
	}
}

func TestMatchObjectUnexpectedProperty(t *testing.T) {
	schema := objectSchema([]string{"a"}, "a", "b")

	set := match(map[string]any{"c": 1.0}, schema)

	want := []diagnostics.Kind{diagnostics.PropertiesMismatch, diagnostics.RequiredProperty}
	if diff := cmp.Diff(want, kinds(set.All())); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	mismatch := set.All()[0].Text
	wantText := "Actual object contains properties not present in schema. Unexpected properties: c. Schema properties not found: a, b."
	if mismatch != wantText {
		t.Errorf("Expected %q, got %q", wantText, mismatch)
	}
	if got := set.All()[1].Text; got != "Actual object missing required property: a." {
		t.Errorf("Unexpected required text: %q", got)
	}
}

func TestMatchObjectMissingOptional(t *testing.T) {
	schema := objectSchema([]string{"a"}, "a", "b")

	set := match(map[string]any{"a": "x"}, schema)

	if len(set.Failures()) != 0 {
		t.Errorf("Expected no failures, got %v", kinds(set.Failures()))
	}
	warnings := set.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != diagnostics.MissingProperties {
		t.Fatalf("Expected one MissingProperties warning, got %v", kinds(warnings))
	}
	want := "Warning: This object is missing non-required properties that were unable to be validated, including b."
	if warnings[0].Text != want {
		t.Errorf("Expected %q, got %q", want, warnings[0].Text)
	}
}

func TestMatchObjectWithoutProperties(t *testing.T) {
	set := match(map[string]any{"a": 1.0}, &models.Schema{Type: "object"})
	if diff := cmp.Diff([]diagnostics.Kind{diagnostics.PropertySchemaMissing}, kinds(set.All())); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchArray(t *testing.T) {
	set := match([]any{"a"}, &models.Schema{Type: "array"})
	if diff := cmp.Diff([]diagnostics.Kind{diagnostics.ItemSchemaMissing}, kinds(set.All())); diff != "" {
		t.Errorf("missing items (-want +got):\n%s", diff)
	}

	set = match([]any{}, &models.Schema{Type: "array", Items: &models.Schema{Type: "string"}})
	if len(set.Failures()) != 0 || len(set.Warnings()) != 1 {
		t.Errorf("Expected one EmptyArray warning, got %v", kinds(set.All()))
	}
}

func TestMatchArrayElementsShareDiagnostics(t *testing.T) {
	pet := objectSchema([]string{"id"}, "id", "tag")
	schema := &models.Schema{Type: "array", Items: pet}
	value := []any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
		map[string]any{"id": "3", "tag": "dog"},
	}

	set := diagnostics.NewSet()
	Match(value, schema, []string{"body"}, set)

	if set.Len() != 1 {
		t.Fatalf("Expected 1 distinct diagnostic, got %d: %v", set.Len(), kinds(set.All()))
	}
	m := set.All()[0]
	if m.Kind != diagnostics.MissingProperties || m.Count != 2 {
		t.Errorf("Expected MissingProperties with count 2, got %s with count %d", m.Kind, m.Count)
	}
	if m.Text != "Warning: This object is missing non-required properties that were unable to be validated, including tag. Path: body" {
		t.Errorf("Unexpected text %q", m.Text)
	}
}

func TestMatchNestedPaths(t *testing.T) {
	owner := objectSchema(nil, "name")
	owner.Properties["name"] = &models.Schema{Type: "string"}
	schema := &models.Schema{
		Type:          "object",
		Properties:    map[string]*models.Schema{"owner": owner, "tags": {Type: "array", Items: &models.Schema{Type: "string"}}},
		PropertyOrder: []string{"owner", "tags"},
	}
	value := map[string]any{
		"owner": map[string]any{"name": 7.0},
		"tags":  []any{"a", false},
	}

	path := make([]string, 1, 4)
	path[0] = "body"
	set := diagnostics.NewSet()
	Match(value, schema, path, set)

	var texts []string
	for _, m := range set.All() {
		texts = append(texts, m.Text)
	}
	want := []string{
		"Actual type did not match schema. Schema type: string. Actual type: number. Path: body -> owner -> name",
		"Actual type did not match schema. Schema type: string. Actual type: boolean. Path: body -> tags",
	}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
	if len(path) != 1 {
		t.Errorf("Expected caller path to be untouched, got %v", path)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	schema := objectSchema([]string{"a", "b"}, "a", "b", "c", "d")
	value := map[string]any{"z": 1.0, "y": 2.0, "c": 3.0}

	first := match(value, schema).All()
	for i := 0; i < 10; i++ {
		again := match(value, schema).All()
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}
