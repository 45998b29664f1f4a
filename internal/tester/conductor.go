package tester

import (
	"context"
	"fmt"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
	"github.com/moamenhredeen/oastest/internal/validation"
)

// Job is one scenario bound to the server and credentials of its target.
type Job struct {
	Scenario    models.Scenario
	Server      string
	Credentials []Credential
}

// Conductor runs a scenario in two phases: request checks that never touch
// the network, then execution and response checks. Phase two only runs when
// phase one found no failures.
type Conductor struct {
	executor Executor
}

// NewConductor creates a conductor that executes requests with executor.
func NewConductor(executor Executor) *Conductor {
	return &Conductor{executor: executor}
}

// Run executes one job and always returns a result. Panics are recovered
// into an UnexpectedError failure.
func (c *Conductor) Run(ctx context.Context, job Job) (result models.ScenarioResult) {
	set := diagnostics.NewSet()
	op := job.Scenario.Operation
	name := job.Scenario.Name()

	defer func() {
		if r := recover(); r != nil {
			set.Report(diagnostics.UnexpectedError, nil, fmt.Sprint(r))
			result = models.NewScenarioResult(op, name, set)
		}
	}()

	validation.ValidateRequest(job.Scenario, set)
	if set.HasFailures() {
		return models.NewScenarioResult(op, name, set)
	}

	req := ExecutionRequest{
		Operation:   op,
		Server:      job.Server,
		Parameters:  job.Scenario.Group.Values,
		Credentials: job.Credentials,
	}
	if job.Scenario.Body.Name != models.BodyNone {
		req.Body = job.Scenario.Body.Value
	}

	resp, err := c.executor.Execute(ctx, req)
	if err != nil {
		set.Report(diagnostics.RequestFailed, nil, err)
		return models.NewScenarioResult(op, name, set)
	}

	ValidateResponse(op, resp, acceptExample(job.Scenario), set)
	return models.NewScenarioResult(op, name, set)
}

// acceptExample returns the Accept header value the scenario sends, if any.
func acceptExample(s models.Scenario) string {
	for i := range s.Operation.Parameters {
		p := &s.Operation.Parameters[i]
		if !p.IsAccept() {
			continue
		}
		if v, ok := s.Group.Value(p.Name); ok {
			return scalarString(v)
		}
	}
	return ""
}
