package tester

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

// fakeExecutor records calls and answers with a fixed response.
type fakeExecutor struct {
	calls atomic.Int32
	resp  *Response
	err   error
	panic any
	last  ExecutionRequest
}

func (f *fakeExecutor) Execute(_ context.Context, req ExecutionRequest) (*Response, error) {
	f.calls.Add(1)
	f.last = req
	if f.panic != nil {
		panic(f.panic)
	}
	return f.resp, f.err
}

func messageTexts(messages []*diagnostics.Message) []string {
	var out []string
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func simpleScenario(values map[string]any) models.Scenario {
	op := &models.Operation{
		ID:     "getPet",
		Method: "GET",
		Path:   "/pets/{petId}",
		Parameters: []models.Parameter{
			{Name: "petId", In: models.InPath, Required: true, Shape: models.ShapeSchema, Schema: &models.Schema{Type: "string"}},
			{Name: "Accept", In: models.InHeader, Shape: models.ShapeSchema, Schema: &models.Schema{Type: "string"}},
		},
		Responses: []models.Response{
			{Status: "200", Content: []models.MediaType{{Name: "application/json", Schema: &models.Schema{Type: "string"}}}},
		},
	}
	return models.Scenario{
		Operation: op,
		Group:     models.ExampleGroup{Name: models.DefaultGroup, Values: values},
		Body:      models.ExampleRequestBody{Name: models.BodyNone, Value: map[string]any{}},
	}
}

func TestConductorSkipsExecutionWhenRequestInvalid(t *testing.T) {
	exec := &fakeExecutor{resp: &Response{Status: 200}}
	res := NewConductor(exec).Run(context.Background(), Job{Scenario: simpleScenario(nil)})

	if exec.calls.Load() != 0 {
		t.Errorf("Expected the executor not to be invoked, got %d calls", exec.calls.Load())
	}
	want := []string{"Missing required parameters: petId."}
	if diff := cmp.Diff(want, messageTexts(res.Failures)); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestConductorPassesScenarioToExecutor(t *testing.T) {
	exec := &fakeExecutor{resp: &Response{Status: 200, ContentType: "application/json", Body: "rex", BodyParsed: true}}
	creds := []Credential{{Scheme: models.SecurityScheme{Name: "key", Type: "apiKey"}, Value: "k"}}

	res := NewConductor(exec).Run(context.Background(), Job{
		Scenario:    simpleScenario(map[string]any{"petId": "1"}),
		Server:      "http://localhost",
		Credentials: creds,
	})

	if res.Failed() || len(res.Warnings) != 0 {
		t.Fatalf("Expected a clean result, got failures %v warnings %v", messageTexts(res.Failures), messageTexts(res.Warnings))
	}
	if exec.calls.Load() != 1 {
		t.Fatalf("Expected 1 call, got %d", exec.calls.Load())
	}
	if exec.last.Server != "http://localhost" || exec.last.Body != nil {
		t.Errorf("unexpected execution request %+v", exec.last)
	}
	if diff := cmp.Diff(creds, exec.last.Credentials); diff != "" {
		t.Errorf("credentials mismatch (-want +got):\n%s", diff)
	}
	if res.OperationID != "getPet" || res.ScenarioName != "default" {
		t.Errorf("unexpected result identity %q %q", res.OperationID, res.ScenarioName)
	}
}

func TestConductorRequestFailed(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("connection refused")}
	res := NewConductor(exec).Run(context.Background(), Job{Scenario: simpleScenario(map[string]any{"petId": "1"})})

	want := []string{"Request could not be completed: connection refused."}
	if diff := cmp.Diff(want, messageTexts(res.Failures)); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestConductorChecksAcceptExample(t *testing.T) {
	exec := &fakeExecutor{resp: &Response{Status: 200, ContentType: "application/json", Body: "rex", BodyParsed: true}}
	res := NewConductor(exec).Run(context.Background(), Job{
		Scenario: simpleScenario(map[string]any{"petId": "1", "Accept": "text/*"}),
	})

	want := []string{"Response content type does not match the Accept header. Accept: text/*. Actual content type: application/json."}
	if diff := cmp.Diff(want, messageTexts(res.Failures)); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestConductorRecoversPanics(t *testing.T) {
	exec := &fakeExecutor{panic: "kaboom"}
	res := NewConductor(exec).Run(context.Background(), Job{Scenario: simpleScenario(map[string]any{"petId": "1"})})

	want := []string{"Unexpected error while running scenario: kaboom."}
	if diff := cmp.Diff(want, messageTexts(res.Failures)); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
	if res.OperationID != "getPet" {
		t.Errorf("Expected operation id getPet, got %q", res.OperationID)
	}
}
