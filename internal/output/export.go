// Package output renders test results as text, JSON, CSV, PDF or DOCX.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/moamenhredeen/oastest/internal/models"
)

// Format represents the output format type
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Renderer writes a report of target results.
type Renderer interface {
	Render(w io.Writer, targets []models.TargetResult) error
	Format() string
}

// NewRenderer returns the renderer for format. verbose only affects text output.
func NewRenderer(format Format, verbose bool) (Renderer, error) {
	switch format {
	case FormatText:
		return NewTextRenderer(verbose), nil
	case FormatJSON:
		return JSONRenderer{}, nil
	case FormatCSV:
		return CSVRenderer{}, nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	case FormatDOCX:
		return NewDocxRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Export renders targets in the given format to filePath, or stdout when
// filePath is empty.
func Export(targets []models.TargetResult, format Format, filePath string, verbose bool) error {
	renderer, err := NewRenderer(format, verbose)
	if err != nil {
		return err
	}

	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	return renderer.Render(w, targets)
}

// getWriter returns an io.Writer for output (stdout or file)
func getWriter(filePath string) (io.Writer, io.Closer, error) {
	if filePath == "" {
		return os.Stdout, nil, nil
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

// JSONRenderer writes the target results with a batch summary.
type JSONRenderer struct{}

// Format returns the output format name.
func (JSONRenderer) Format() string { return string(FormatJSON) }

type jsonReport struct {
	Summary models.BatchSummary   `json:"summary"`
	Targets []models.TargetResult `json:"targets"`
}

// Render exports test results as JSON
func (JSONRenderer) Render(w io.Writer, targets []models.TargetResult) error {
	if targets == nil {
		targets = []models.TargetResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Summary: models.SummarizeBatch(targets),
		Targets: targets,
	})
}

// CSVRenderer writes one row per diagnostic. Clean scenarios and skipped
// targets get a single row each.
type CSVRenderer struct{}

// Format returns the output format name.
func (CSVRenderer) Format() string { return string(FormatCSV) }

// Render exports test results as CSV
func (CSVRenderer) Render(w io.Writer, targets []models.TargetResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{
		"target", "spec", "server", "operation_id", "original_operation_id",
		"scenario", "status", "severity", "count", "message",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, t := range targets {
		if t.Skipped() {
			row := []string{t.TargetName, t.SpecPath, t.Server, "", "", "", string(models.StatusSkipped), "error", "1", t.Error}
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}

		for _, r := range t.Results {
			status := string(models.StatusPassed)
			if r.Failed() {
				status = string(models.StatusFailed)
			}
			prefix := []string{t.TargetName, t.SpecPath, t.Server, r.OperationID, r.OriginalOperationID, r.ScenarioName, status}

			messages := models.Diagnostics(r.Failures)
			messages = append(messages, models.Diagnostics(r.Warnings)...)
			if len(messages) == 0 {
				if err := cw.Write(append(prefix, "", "", "")); err != nil {
					return err
				}
				continue
			}

			for i, d := range messages {
				severity := "error"
				if i >= len(r.Failures) {
					severity = "warning"
				}
				row := append(append([]string{}, prefix...), severity, strconv.Itoa(d.Count), d.Message)
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseFormat parses a string into a Format, returning error if invalid
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatCSV, FormatPDF, FormatDOCX:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format '%s': must be one of text, json, csv, pdf, docx", s)
	}
}
