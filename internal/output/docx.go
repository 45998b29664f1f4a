package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

// DocxRenderer renders test results as a Word (DOCX) report.
type DocxRenderer struct{}

// NewDocxRenderer creates a new DOCX renderer.
func NewDocxRenderer() *DocxRenderer {
	return &DocxRenderer{}
}

// Format returns the output format name.
func (c *DocxRenderer) Format() string {
	return string(FormatDOCX)
}

// Render writes the batch summary followed by one section per target.
func (c *DocxRenderer) Render(w io.Writer, targets []models.TargetResult) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	c.addSummary(document, targets)
	for _, t := range targets {
		c.addTarget(document, t)
	}

	if err := document.Write(w); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (c *DocxRenderer) addSummary(document *docx.RootDoc, targets []models.TargetResult) {
	s := models.SummarizeBatch(targets)

	_, _ = document.AddHeading("OpenAPI Test Report", 0)
	document.AddParagraph(fmt.Sprintf("Targets: %d (%d passed, %d failed, %d skipped)",
		s.Targets, s.TargetsPassed, s.TargetsFailed, s.TargetsSkipped))
	document.AddParagraph(fmt.Sprintf("Scenarios: %d (%d passed, %d failed)", s.Scenarios, s.ScenariosPassed, s.ScenariosFailed))
	document.AddParagraph(fmt.Sprintf("Warnings: %d", s.Warnings))
	document.AddEmptyParagraph()
}

func (c *DocxRenderer) addTarget(document *docx.RootDoc, t models.TargetResult) {
	summary := models.SummarizeTarget(t)

	_, _ = document.AddHeading(fmt.Sprintf("%s [%s]", t.TargetName, strings.ToUpper(string(summary.Status))), 1)
	document.AddParagraph("Spec: " + t.SpecPath)
	if t.Server != "" {
		document.AddParagraph("Server: " + t.Server)
	}
	if len(t.SecuritySchemes) > 0 {
		document.AddParagraph("Security: " + strings.Join(t.SecuritySchemes, ", "))
	}

	if t.Skipped() {
		document.AddParagraph("Error: " + t.Error)
		document.AddEmptyParagraph()
		return
	}

	for _, op := range summary.Operations {
		_, _ = document.AddHeading(fmt.Sprintf("%s (%d/%d passed)", op.OperationID, op.Passed, op.Scenarios), 2)

		for _, res := range t.Results {
			if res.GroupID() != op.OperationID {
				continue
			}
			status := "PASS"
			if res.Failed() {
				status = "FAIL"
			}
			document.AddParagraph(fmt.Sprintf("%s  %s", status, res.ScenarioName))
			c.addMessages(document, res.Failures)
			c.addMessages(document, res.Warnings)
		}
	}
	document.AddEmptyParagraph()
}

func (c *DocxRenderer) addMessages(document *docx.RootDoc, messages []*diagnostics.Message) {
	for _, m := range messages {
		text := m.Text
		if m.Count > 1 {
			text = fmt.Sprintf("%s (x%d)", text, m.Count)
		}
		document.AddParagraph("• " + text)
	}
}
