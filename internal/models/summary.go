package models

// Status is the overall outcome of a target.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// OperationSummary rolls up the scenarios of one operation.
type OperationSummary struct {
	OperationID string `json:"operationId"`
	Scenarios   int    `json:"scenarios"`
	Passed      int    `json:"passed"`
	Failed      int    `json:"failed"`
	Warnings    int    `json:"warnings"`
}

// TargetSummary rolls up the scenarios of one target.
type TargetSummary struct {
	TargetName string             `json:"targetName"`
	Status     Status             `json:"status"`
	Scenarios  int                `json:"scenarios"`
	Passed     int                `json:"passed"`
	Failed     int                `json:"failed"`
	Warnings   int                `json:"warnings"`
	Operations []OperationSummary `json:"operations"`
	Error      string             `json:"error,omitempty"`
}

// BatchSummary rolls up every target of a run.
type BatchSummary struct {
	Targets         int             `json:"targets"`
	TargetsPassed   int             `json:"targetsPassed"`
	TargetsFailed   int             `json:"targetsFailed"`
	TargetsSkipped  int             `json:"targetsSkipped"`
	Scenarios       int             `json:"scenarios"`
	ScenariosPassed int             `json:"scenariosPassed"`
	ScenariosFailed int             `json:"scenariosFailed"`
	Warnings        int             `json:"warnings"`
	Results         []TargetSummary `json:"results"`
}

// AddResult counts one scenario result into the operation summary.
func (s *OperationSummary) AddResult(result ScenarioResult) {
	s.Scenarios++
	s.Warnings += len(result.Warnings)
	if result.Failed() {
		s.Failed++
	} else {
		s.Passed++
	}
}

// SummarizeOperations groups results by operation, keeping the order in which
// operations first appear. Results of the same declared operation id share a
// group even when their normalized ids differ.
func SummarizeOperations(results []ScenarioResult) []OperationSummary {
	var summaries []OperationSummary
	index := make(map[string]int)

	for _, r := range results {
		id := r.GroupID()
		i, ok := index[id]
		if !ok {
			i = len(summaries)
			index[id] = i
			summaries = append(summaries, OperationSummary{OperationID: id})
		}
		summaries[i].AddResult(r)
	}

	return summaries
}

// SummarizeTarget rolls a target result into a summary.
func SummarizeTarget(target TargetResult) TargetSummary {
	summary := TargetSummary{
		TargetName: target.TargetName,
		Operations: []OperationSummary{},
	}

	if target.Skipped() {
		summary.Status = StatusSkipped
		summary.Error = target.Error
		return summary
	}

	for _, r := range target.Results {
		summary.Scenarios++
		summary.Warnings += len(r.Warnings)
		if r.Failed() {
			summary.Failed++
		} else {
			summary.Passed++
		}
	}
	if ops := SummarizeOperations(target.Results); ops != nil {
		summary.Operations = ops
	}

	summary.Status = StatusPassed
	if summary.Failed > 0 {
		summary.Status = StatusFailed
	}
	return summary
}

// AddTarget adds a target result to the summary and updates aggregates.
func (s *BatchSummary) AddTarget(target TargetResult) {
	ts := SummarizeTarget(target)
	s.Results = append(s.Results, ts)
	s.Targets++

	switch ts.Status {
	case StatusSkipped:
		s.TargetsSkipped++
	case StatusFailed:
		s.TargetsFailed++
	default:
		s.TargetsPassed++
	}

	s.Scenarios += ts.Scenarios
	s.ScenariosPassed += ts.Passed
	s.ScenariosFailed += ts.Failed
	s.Warnings += ts.Warnings
}

// SummarizeBatch rolls every target result into a batch summary.
func SummarizeBatch(targets []TargetResult) BatchSummary {
	summary := BatchSummary{Results: make([]TargetSummary, 0, len(targets))}
	for _, t := range targets {
		summary.AddTarget(t)
	}
	return summary
}

// HasProblems reports whether any scenario failed or any target was skipped.
func (s BatchSummary) HasProblems() bool {
	return s.ScenariosFailed > 0 || s.TargetsSkipped > 0
}
