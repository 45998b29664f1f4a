package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/moamenhredeen/oastest/internal/diagnostics"
	"github.com/moamenhredeen/oastest/internal/models"
)

const (
	pdfPageWidth   = 190.0
	pdfMarginLeft  = 10.0
	pdfMarginTop   = 10.0
	pdfMarginRight = 10.0
	pdfLineHeight  = 5.0
)

// PDFRenderer renders test results as a PDF report.
type PDFRenderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewPDFRenderer creates a new PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Format returns the output format name.
func (c *PDFRenderer) Format() string {
	return string(FormatPDF)
}

// Render writes a summary page followed by one section per target.
func (c *PDFRenderer) Render(w io.Writer, targets []models.TargetResult) error {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	c.pdf.SetDrawColor(180, 180, 180)
	// core fonts are cp1252 and scenario names carry an en dash
	c.tr = c.pdf.UnicodeTranslatorFromDescriptor("")

	c.addSummary(targets)
	for _, t := range targets {
		c.addTarget(t)
	}

	if err := c.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func (c *PDFRenderer) addSummary(targets []models.TargetResult) {
	s := models.SummarizeBatch(targets)

	c.pdf.AddPage()
	c.pdf.SetFont("Arial", "B", 20)
	c.pdf.SetTextColor(40, 40, 40)
	c.pdf.CellFormat(pdfPageWidth, 12, "OpenAPI Test Report", "", 1, "C", false, 0, "")
	c.pdf.Ln(6)

	c.pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Targets", fmt.Sprintf("%d (%d passed, %d failed, %d skipped)", s.Targets, s.TargetsPassed, s.TargetsFailed, s.TargetsSkipped)},
		{"Scenarios", fmt.Sprintf("%d (%d passed, %d failed)", s.Scenarios, s.ScenariosPassed, s.ScenariosFailed)},
		{"Warnings", fmt.Sprintf("%d", s.Warnings)},
	}
	for _, row := range rows {
		c.pdf.SetFont("Arial", "B", 11)
		c.pdf.CellFormat(40, 7, row[0], "1", 0, "L", false, 0, "")
		c.pdf.SetFont("Arial", "", 11)
		c.pdf.CellFormat(pdfPageWidth-40, 7, row[1], "1", 1, "L", false, 0, "")
	}
	c.pdf.Ln(6)

	c.tableHeader("Target", "Status", "Passed", "Failed")
	for _, ts := range s.Results {
		c.pdf.SetFont("Arial", "", 10)
		c.statusColor(ts.Status)
		c.pdf.CellFormat(100, 6, c.tr(ts.TargetName), "1", 0, "L", false, 0, "")
		c.pdf.CellFormat(30, 6, strings.ToUpper(string(ts.Status)), "1", 0, "C", false, 0, "")
		c.pdf.SetTextColor(40, 40, 40)
		c.pdf.CellFormat(30, 6, fmt.Sprintf("%d", ts.Passed), "1", 0, "R", false, 0, "")
		c.pdf.CellFormat(30, 6, fmt.Sprintf("%d", ts.Failed), "1", 1, "R", false, 0, "")
	}
}

func (c *PDFRenderer) tableHeader(cols ...string) {
	widths := []float64{100, 30, 30, 30}
	c.pdf.SetFont("Arial", "B", 10)
	c.pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		c.pdf.CellFormat(widths[i], 7, col, "1", ln, "C", true, 0, "")
	}
}

func (c *PDFRenderer) statusColor(s models.Status) {
	switch s {
	case models.StatusPassed:
		c.pdf.SetTextColor(30, 130, 60)
	case models.StatusFailed:
		c.pdf.SetTextColor(190, 30, 30)
	default:
		c.pdf.SetTextColor(190, 140, 0)
	}
}

func (c *PDFRenderer) addTarget(t models.TargetResult) {
	summary := models.SummarizeTarget(t)

	c.pdf.AddPage()
	c.pdf.SetFont("Arial", "B", 16)
	c.pdf.SetTextColor(40, 40, 40)
	c.pdf.CellFormat(pdfPageWidth, 10, c.tr(t.TargetName), "", 1, "L", false, 0, "")

	c.pdf.SetFont("Arial", "", 10)
	c.pdf.CellFormat(pdfPageWidth, pdfLineHeight, c.tr("Spec: "+t.SpecPath), "", 1, "L", false, 0, "")
	if t.Server != "" {
		c.pdf.CellFormat(pdfPageWidth, pdfLineHeight, c.tr("Server: "+t.Server), "", 1, "L", false, 0, "")
	}
	if len(t.SecuritySchemes) > 0 {
		c.pdf.CellFormat(pdfPageWidth, pdfLineHeight, c.tr("Security: "+strings.Join(t.SecuritySchemes, ", ")), "", 1, "L", false, 0, "")
	}
	c.statusColor(summary.Status)
	c.pdf.SetFont("Arial", "B", 10)
	c.pdf.CellFormat(pdfPageWidth, pdfLineHeight, "Status: "+strings.ToUpper(string(summary.Status)), "", 1, "L", false, 0, "")
	c.pdf.SetTextColor(40, 40, 40)
	c.pdf.Ln(3)

	if t.Skipped() {
		c.pdf.SetFont("Arial", "", 10)
		c.pdf.MultiCell(pdfPageWidth, pdfLineHeight, c.tr(t.Error), "", "L", false)
		return
	}

	for _, op := range summary.Operations {
		c.pdf.SetFont("Arial", "B", 12)
		c.pdf.SetFillColor(240, 240, 240)
		title := fmt.Sprintf("%s  (%d/%d passed)", op.OperationID, op.Passed, op.Scenarios)
		c.pdf.CellFormat(pdfPageWidth, 7, c.tr(title), "", 1, "L", true, 0, "")
		c.pdf.Ln(1)

		for _, res := range t.Results {
			if res.GroupID() != op.OperationID {
				continue
			}
			status := models.StatusPassed
			if res.Failed() {
				status = models.StatusFailed
			}
			c.statusColor(status)
			c.pdf.SetFont("Arial", "B", 10)
			c.pdf.CellFormat(20, pdfLineHeight, strings.ToUpper(string(status)), "", 0, "L", false, 0, "")
			c.pdf.SetTextColor(40, 40, 40)
			c.pdf.SetFont("Arial", "", 10)
			c.pdf.CellFormat(pdfPageWidth-20, pdfLineHeight, c.tr(res.ScenarioName), "", 1, "L", false, 0, "")

			c.addMessages(res.Failures)
			c.addMessages(res.Warnings)
		}
		c.pdf.Ln(3)
	}
}

func (c *PDFRenderer) addMessages(messages []*diagnostics.Message) {
	c.pdf.SetFont("Arial", "", 9)
	for _, m := range messages {
		text := m.Text
		if m.Count > 1 {
			text = fmt.Sprintf("%s (x%d)", text, m.Count)
		}
		c.pdf.SetX(pdfMarginLeft + 20)
		c.pdf.MultiCell(pdfPageWidth-20, 4.5, c.tr("- "+text), "", "L", false)
	}
}
