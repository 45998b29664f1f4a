package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

var (
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	white  = color.New(color.FgWhite, color.Bold).SprintFunc()
)

// TextRenderer writes a human readable report. Without Verbose only failed
// scenarios are listed.
type TextRenderer struct {
	Verbose bool
}

// NewTextRenderer creates a text renderer.
func NewTextRenderer(verbose bool) *TextRenderer {
	return &TextRenderer{Verbose: verbose}
}

// Format returns the output format name.
func (r *TextRenderer) Format() string { return string(FormatText) }

// Render writes every target followed by the batch summary.
func (r *TextRenderer) Render(w io.Writer, targets []models.TargetResult) error {
	p := &printer{w: w}

	for _, t := range targets {
		r.renderTarget(p, t)
	}

	s := models.SummarizeBatch(targets)
	p.printf("%s\n", white("=== Test Results ==="))
	p.printf("Targets:   %d (%s passed, %s failed, %s skipped)\n",
		s.Targets, green(s.TargetsPassed), red(s.TargetsFailed), yellow(s.TargetsSkipped))
	p.printf("Scenarios: %d (%s passed, %s failed)\n", s.Scenarios, green(s.ScenariosPassed), red(s.ScenariosFailed))
	p.printf("Warnings:  %d\n", s.Warnings)
	return p.err
}

func (r *TextRenderer) renderTarget(p *printer, t models.TargetResult) {
	summary := models.SummarizeTarget(t)
	p.printf("%s %s (%s)\n", StatusLabel(summary.Status), white(t.TargetName), t.SpecPath)

	if t.Skipped() {
		p.printf("    %s\n\n", red(t.Error))
		return
	}

	p.printf("    Server: %s\n", t.Server)
	if len(t.SecuritySchemes) > 0 {
		p.printf("    Security: %s\n", strings.Join(t.SecuritySchemes, ", "))
	}

	for _, op := range summary.Operations {
		p.printf("    %s  %d/%d passed", op.OperationID, op.Passed, op.Scenarios)
		if op.Warnings > 0 {
			p.printf(", %s", yellow(fmt.Sprintf("%d warnings", op.Warnings)))
		}
		p.printf("\n")

		for _, res := range t.Results {
			if res.GroupID() != op.OperationID || (!res.Failed() && !r.Verbose) {
				continue
			}
			mark := green("✓")
			if res.Failed() {
				mark = red("✗")
			}
			p.printf("      %s %s\n", mark, res.ScenarioName)
			printMessages(p, res.Failures, red)
			if r.Verbose {
				printMessages(p, res.Warnings, yellow)
			}
		}
	}
	p.printf("\n")
}

func printMessages(p *printer, messages []*diagnostics.Message, paint func(a ...interface{}) string) {
	for _, m := range messages {
		count := ""
		if m.Count > 1 {
			count = fmt.Sprintf(" (x%d)", m.Count)
		}
		p.printf("          - %s%s\n", paint(m.Text), count)
	}
}

// StatusLabel renders a target status as a colored tag.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusPassed:
		return green("PASS")
	case models.StatusFailed:
		return red("FAIL")
	default:
		return yellow("SKIP")
	}
}

// printer remembers the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
