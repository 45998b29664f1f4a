package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moamenhredeen/oastest/internal/models"
)

const petStore = "../../tests/pet-store.json"

func mustParse(t *testing.T, spec string) *Parser {
	t.Helper()
	p, err := Parse([]byte(spec), nil)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	return p
}

func findOperation(t *testing.T, p *Parser, id string) *models.Operation {
	t.Helper()
	for i, op := range p.Operations() {
		if op.ID == id {
			return &p.Operations()[i]
		}
	}
	t.Fatalf("operation %s not found", id)
	return nil
}

func TestParseFile(t *testing.T) {
	p, err := ParseFile(petStore)
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	if p == nil {
		t.Fatal("Parser is nil")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("../../tests/does-not-exist.json"); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestServers(t *testing.T) {
	p, err := ParseFile(petStore)
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	want := []models.Server{{URL: "http://petstore.swagger.io/v1", Variables: map[string]string{}}}
	if diff := cmp.Diff(want, p.Servers()); diff != "" {
		t.Errorf("servers mismatch (-want +got):\n%s", diff)
	}
}

func TestOperations(t *testing.T) {
	p, err := ParseFile(petStore)
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	var got []string
	for _, op := range p.Operations() {
		got = append(got, op.Method+" "+op.Path+" "+op.ID)
	}
	want := []string{
		"GET /pets listPets",
		"POST /pets createPets",
		"GET /pets/{petId} showPetById",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}

	list := findOperation(t, p, "listPets")
	if len(list.Parameters) != 1 {
		t.Fatalf("Expected 1 parameter, got %d", len(list.Parameters))
	}
	limit := list.Parameters[0]
	if limit.Required || !limit.HasExample || limit.Example != float64(10) {
		t.Errorf("unexpected limit parameter: %+v", limit)
	}
	if limit.Shape != models.ShapeSchema || limit.Schema.Type != "integer" {
		t.Errorf("Expected an integer schema parameter, got %+v", limit)
	}

	var statuses []string
	for _, r := range list.Responses {
		statuses = append(statuses, r.Status)
	}
	if diff := cmp.Diff([]string{"200", "default"}, statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	pets := list.Responses[0].Content[0].Schema
	if pets.Type != "array" || pets.Items == nil || pets.Items.Type != "object" {
		t.Errorf("Expected an array of objects, got %+v", pets)
	}

	show := findOperation(t, p, "showPetById")
	petID := show.Parameters[0]
	if !petID.Required || petID.In != models.InPath {
		t.Errorf("Expected a required path parameter, got %+v", petID)
	}
	if diff := cmp.Diff([]string{"rex", "fido"}, petID.ExampleNames); diff != "" {
		t.Errorf("example names mismatch (-want +got):\n%s", diff)
	}

	create := findOperation(t, p, "createPets")
	body := create.RequestBody
	if body == nil || !body.Required || body.Shape != models.ShapeContent {
		t.Fatalf("Expected a required request body with content, got %+v", body)
	}
	if diff := cmp.Diff(map[string]any{"id": float64(1), "name": "Rex"}, body.Media.Example); diff != "" {
		t.Errorf("body example mismatch (-want +got):\n%s", diff)
	}
	pet := body.Media.Schema
	if diff := cmp.Diff([]string{"id", "name", "tag"}, pet.PropertyOrder); diff != "" {
		t.Errorf("property order mismatch (-want +got):\n%s", diff)
	}
	if !pet.IsRequired("name") || pet.IsRequired("tag") {
		t.Errorf("unexpected required list %v", pet.Required)
	}
	if pet.Properties["tag"].Example != "dog" {
		t.Errorf("Expected tag example dog, got %v", pet.Properties["tag"].Example)
	}
	// Pet is shared between the request body and the array items.
	if pets.Items != pet {
		t.Error("Expected $ref schemas to resolve to the same pointer")
	}
}

func TestNormalizeOperationID(t *testing.T) {
	tests := []struct {
		id, method, path string
		want, original   string
	}{
		{"listPets", "GET", "/pets", "listPets", ""},
		{"list-pets.v2", "GET", "/pets", "list_pets_v2", "list-pets.v2"},
		{"", "GET", "/pets/{petId}", "get_pets__petId_", ""},
		{"", "DELETE", "/", "delete_", ""},
	}

	for _, tt := range tests {
		got, original := NormalizeOperationID(tt.id, tt.method, tt.path)
		if got != tt.want || original != tt.original {
			t.Errorf("NormalizeOperationID(%q, %q, %q) = %q, %q; want %q, %q",
				tt.id, tt.method, tt.path, got, original, tt.want, tt.original)
		}
	}
}

const shapesSpec = `
openapi: 3.0.3
info: {title: shapes, version: "1"}
paths:
  /things/{id}:
    parameters:
      - name: id
        in: path
        schema: {type: string}
        example: shared
    get:
      operationId: getThing
      parameters:
        - name: id
          in: path
          schema: {type: integer}
          example: 7
        - name: both
          in: query
          schema: {type: string}
          content:
            application/json:
              schema: {type: string}
        - name: neither
          in: query
        - name: twoTypes
          in: query
          content:
            application/json:
              schema: {type: string}
            text/plain:
              schema: {type: string}
        - name: noSchema
          in: query
          content:
            application/json:
              example: x
        - name: filter
          in: query
          content:
            application/json:
              schema:
                type: object
                properties:
                  color: {type: string}
              examples:
                red:
                  value: {color: red}
        - name: conflict
          in: header
          schema: {type: string}
          example: a
          examples:
            other:
              value: b
      requestBody:
        content:
          application/json:
            schema: {type: object}
          application/xml:
            schema: {type: object}
      responses:
        "2XX":
          description: ok
`

func TestParameterShapes(t *testing.T) {
	op := findOperation(t, mustParse(t, shapesSpec), "getThing")

	type shape struct {
		Name  string
		Shape models.Shape
		Fault models.ShapeFault
		Count int
	}
	var got []shape
	for _, p := range op.Parameters {
		got = append(got, shape{p.Name, p.Shape, p.Fault, p.MediaTypeCount})
	}
	want := []shape{
		{"id", models.ShapeSchema, models.FaultNone, 0},
		{"both", models.ShapeInvalid, models.FaultSchemaAndContent, 1},
		{"neither", models.ShapeInvalid, models.FaultNoSchemaOrContent, 0},
		{"twoTypes", models.ShapeInvalid, models.FaultMediaTypeCount, 2},
		{"noSchema", models.ShapeInvalid, models.FaultMediaTypeSchemaMissing, 1},
		{"filter", models.ShapeContent, models.FaultNone, 1},
		{"conflict", models.ShapeSchema, models.FaultNone, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shapes mismatch (-want +got):\n%s", diff)
	}

	// the operation's id parameter overrides the path-level one
	id := op.Parameters[0]
	if id.Schema.Type != "integer" || id.Example != float64(7) || !id.Required {
		t.Errorf("Expected the operation-level id parameter, got %+v", id)
	}

	filter := op.Parameters[5]
	if diff := cmp.Diff(map[string]any{"red": map[string]any{"color": "red"}}, filter.Content.Examples); diff != "" {
		t.Errorf("media examples mismatch (-want +got):\n%s", diff)
	}
	if !op.Parameters[6].ExampleConflict {
		t.Error("Expected an example conflict on the conflict parameter")
	}

	body := op.RequestBody
	if body.Required || body.Shape != models.ShapeInvalid || body.Fault != models.FaultMediaTypeCount {
		t.Errorf("unexpected request body %+v", body)
	}

	if op.Responses[0].Status != "2XX" || op.Responses[0].Content != nil {
		t.Errorf("unexpected responses %+v", op.Responses)
	}
}

func TestSchemaParameterWithoutContent(t *testing.T) {
	p := mustParse(t, `{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{"/items":{"get":{"operationId":"listItems","parameters":[{"name":"limit","in":"query","schema":{"type":"integer"}}],"responses":{"200":{"description":"ok"}}}}}}`)

	limit := findOperation(t, p, "listItems").Parameters[0]
	if limit.Shape != models.ShapeSchema || limit.Fault != models.FaultNone {
		t.Errorf("Expected a schema parameter, got shape=%v fault=%v", limit.Shape, limit.Fault)
	}
	if limit.Content != nil || limit.MediaTypeCount != 0 {
		t.Errorf("Expected no content, got %+v", limit.Content)
	}
}

const mediaConflictSpec = `
openapi: 3.0.3
info: {title: conflict, version: "1"}
paths:
  /things:
    get:
      operationId: getThings
      parameters:
        - name: filter
          in: query
          content:
            application/json:
              schema: {type: object}
              example: {color: red}
              examples:
                blue:
                  value: {color: blue}
      responses:
        "200":
          description: ok
`

func TestMediaTypeExampleConflict(t *testing.T) {
	filter := findOperation(t, mustParse(t, mediaConflictSpec), "getThings").Parameters[0]
	if filter.Shape != models.ShapeContent {
		t.Fatalf("Expected a content parameter, got fault=%v", filter.Fault)
	}
	if filter.ExampleConflict || !filter.Content.ExampleConflict {
		t.Errorf("Expected the conflict on the media type only, got param=%v media=%v",
			filter.ExampleConflict, filter.Content.ExampleConflict)
	}
}

const schemaSpec = `
openapi: 3.1.0
info: {title: schemas, version: "1"}
paths:
  /nodes:
    get:
      operationId: listNodes
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Node'
components:
  schemas:
    Node:
      type: object
      properties:
        name:
          type: [string, "null"]
        kind:
          type: string
          enum: [leaf, branch]
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
    Base:
      type: object
      required: [id]
      properties:
        id: {type: integer}
`

func TestSchemaConversion(t *testing.T) {
	op := findOperation(t, mustParse(t, schemaSpec), "listNodes")
	node := op.Responses[0].Content[0].Schema

	name := node.Properties["name"]
	if name.Type != "string" || !name.Nullable {
		t.Errorf("Expected a nullable string, got %+v", name)
	}
	if diff := cmp.Diff([]any{"leaf", "branch"}, node.Properties["kind"].Enum); diff != "" {
		t.Errorf("enum mismatch (-want +got):\n%s", diff)
	}
	if node.Properties["children"].Items != node {
		t.Error("Expected the recursive reference to resolve to the same schema")
	}
}

func TestSecurity(t *testing.T) {
	spec := `
openapi: 3.0.3
info: {title: secured, version: "1"}
servers:
  - url: "{scheme}://api.example.com/{version}"
    variables:
      scheme: {default: https}
      version: {default: v2}
security:
  - apiKey: []
paths:
  /a:
    get:
      operationId: inherits
      responses: {"200": {description: ok}}
  /b:
    get:
      operationId: overrides
      security:
        - {}
        - bearer: []
          basic: []
      responses: {"200": {description: ok}}
components:
  securitySchemes:
    apiKey: {type: apiKey, in: header, name: X-API-Key}
    bearer: {type: http, scheme: Bearer}
    basic: {type: http, scheme: basic}
`
	p := mustParse(t, spec)

	wantSchemes := map[string]models.SecurityScheme{
		"apiKey": {Name: "apiKey", Type: "apiKey", In: "header", ParamName: "X-API-Key"},
		"bearer": {Name: "bearer", Type: "http", Scheme: "bearer"},
		"basic":  {Name: "basic", Type: "http", Scheme: "basic"},
	}
	if diff := cmp.Diff(wantSchemes, p.SecuritySchemes()); diff != "" {
		t.Errorf("schemes mismatch (-want +got):\n%s", diff)
	}

	inherits := findOperation(t, p, "inherits")
	if diff := cmp.Diff([]models.SecurityRequirement{{"apiKey"}}, inherits.Security); diff != "" {
		t.Errorf("inherited security mismatch (-want +got):\n%s", diff)
	}
	overrides := findOperation(t, p, "overrides")
	if diff := cmp.Diff([]models.SecurityRequirement{{}, {"basic", "bearer"}}, overrides.Security); diff != "" {
		t.Errorf("operation security mismatch (-want +got):\n%s", diff)
	}

	want := []models.Server{{
		URL:       "{scheme}://api.example.com/{version}",
		Variables: map[string]string{"scheme": "https", "version": "v2"},
	}}
	if diff := cmp.Diff(want, p.Servers()); diff != "" {
		t.Errorf("servers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadURL(t *testing.T) {
	spec, err := os.ReadFile(petStore)
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/specs/pet-store.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	}))
	defer srv.Close()

	p, err := Load(context.Background(), srv.URL+"/specs/pet-store.json")
	if err != nil {
		t.Fatalf("Failed to load spec over http: %v", err)
	}
	if len(p.Operations()) != 3 {
		t.Errorf("Expected 3 operations, got %d", len(p.Operations()))
	}

	if _, err := Load(context.Background(), srv.URL+"/missing.json"); err == nil {
		t.Error("Expected an error for a missing remote document")
	}
}

func TestLoadFile(t *testing.T) {
	p, err := Load(context.Background(), petStore)
	if err != nil {
		t.Fatalf("Failed to load spec: %v", err)
	}
	if len(p.Operations()) != 3 {
		t.Errorf("Expected 3 operations, got %d", len(p.Operations()))
	}
}
