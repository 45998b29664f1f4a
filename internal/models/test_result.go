package models

import (
	"encoding/json"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
)

// ScenarioResult is the outcome of running one scenario.
type ScenarioResult struct {
	OperationID         string
	OriginalOperationID string
	ScenarioName        string

	// Failures and Warnings hold distinct messages in first-seen order.
	Failures []*diagnostics.Message
	Warnings []*diagnostics.Message
}

// NewScenarioResult splits the messages of set by severity.
func NewScenarioResult(op *Operation, scenarioName string, set *diagnostics.Set) ScenarioResult {
	return ScenarioResult{
		OperationID:         op.ID,
		OriginalOperationID: op.OriginalID,
		ScenarioName:        scenarioName,
		Failures:            set.Failures(),
		Warnings:            set.Warnings(),
	}
}

// Failed reports whether the scenario produced any failure. Warnings never
// fail a scenario.
func (r ScenarioResult) Failed() bool {
	return len(r.Failures) > 0
}

// GroupID returns the id results are grouped under: the declared operation id
// when normalization changed it, else the normalized id.
func (r ScenarioResult) GroupID() string {
	if r.OriginalOperationID != "" {
		return r.OriginalOperationID
	}
	return r.OperationID
}

// FailuresByHash indexes failures by message hash.
func (r ScenarioResult) FailuresByHash() map[string]*diagnostics.Message {
	return byHash(r.Failures)
}

// WarningsByHash indexes warnings by message hash.
func (r ScenarioResult) WarningsByHash() map[string]*diagnostics.Message {
	return byHash(r.Warnings)
}

func byHash(messages []*diagnostics.Message) map[string]*diagnostics.Message {
	out := make(map[string]*diagnostics.Message, len(messages))
	for _, m := range messages {
		out[m.Hash] = m
	}
	return out
}

// Diagnostic is the serialized form of a message.
type Diagnostic struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Diagnostics converts messages into their serialized form.
func Diagnostics(messages []*diagnostics.Message) []Diagnostic {
	out := make([]Diagnostic, 0, len(messages))
	for _, m := range messages {
		out = append(out, Diagnostic{Message: m.Text, Count: m.Count})
	}
	return out
}

type scenarioResultJSON struct {
	OperationID         string       `json:"operationId"`
	OriginalOperationID string       `json:"originalOperationId,omitempty"`
	ScenarioName        string       `json:"scenarioName"`
	Failures            []Diagnostic `json:"failures"`
	Warnings            []Diagnostic `json:"warnings"`
}

func (r ScenarioResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(scenarioResultJSON{
		OperationID:         r.OperationID,
		OriginalOperationID: r.OriginalOperationID,
		ScenarioName:        r.ScenarioName,
		Failures:            Diagnostics(r.Failures),
		Warnings:            Diagnostics(r.Warnings),
	})
}

// TargetResult is the outcome of running one target. It carries either
// Results or Error, never both.
type TargetResult struct {
	TargetName      string
	SpecPath        string
	Server          string
	SecuritySchemes []string

	Results []ScenarioResult
	Error   string
}

// NewTargetError builds the result of a target whose setup failed.
func NewTargetError(name, specPath, server string, err error) TargetResult {
	return TargetResult{
		TargetName: name,
		SpecPath:   specPath,
		Server:     server,
		Error:      err.Error(),
	}
}

// Skipped reports whether the target failed before any scenario ran.
func (t TargetResult) Skipped() bool {
	return t.Error != ""
}

type targetResultJSON struct {
	TargetName      string            `json:"targetName"`
	SpecPath        string            `json:"specPath"`
	Server          string            `json:"server"`
	SecuritySchemes []string          `json:"securitySchemes"`
	Results         *[]ScenarioResult `json:"results,omitempty"`
	Error           string            `json:"error,omitempty"`
}

func (t TargetResult) MarshalJSON() ([]byte, error) {
	out := targetResultJSON{
		TargetName:      t.TargetName,
		SpecPath:        t.SpecPath,
		Server:          t.Server,
		SecuritySchemes: t.SecuritySchemes,
		Error:           t.Error,
	}
	if out.SecuritySchemes == nil {
		out.SecuritySchemes = []string{}
	}
	if t.Error == "" {
		results := t.Results
		if results == nil {
			results = []ScenarioResult{}
		}
		out.Results = &results
	}
	return json.Marshal(out)
}
