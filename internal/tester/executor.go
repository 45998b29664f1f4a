package tester

import (
	"context"
	"net/http"

	"github.com/moamenhredeen/oastest/internal/models"
)

// Credential is a resolved security scheme and the secret that satisfies it.
type Credential struct {
	Scheme models.SecurityScheme
	Value  string
}

// ExecutionRequest is everything an Executor needs to perform one scenario.
type ExecutionRequest struct {
	Operation *models.Operation
	// Server is the base URL operation paths are appended to.
	Server string
	// Parameters maps parameter name to its example value.
	Parameters map[string]any
	// Body is nil when the scenario sends no request body.
	Body        map[string]any
	Credentials []Credential
}

// Response is the outcome of a performed request.
type Response struct {
	Status      int
	Header      http.Header
	ContentType string
	// Body holds the decoded payload when BodyParsed is set.
	Body       any
	BodyParsed bool
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Executor performs a scenario against a live API.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*Response, error)
}
