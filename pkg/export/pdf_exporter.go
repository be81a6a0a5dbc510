package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders weekly schedule grids into simple PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderWeekly lays a weekly timetable out in landscape: one column per
// teaching day preceded by a time column, one row per half-hour slot.
// When meetings are given, a per-course legend table follows on a second
// page.
func (e *PDFExporter) RenderWeekly(title string, days []string, slotLabels []string, cells [][]string, meetings []ScheduleRow) ([]byte, error) {
	if len(days) == 0 || len(slotLabels) == 0 {
		return nil, fmt.Errorf("weekly grid requires day and slot headers")
	}
	if len(cells) != len(slotLabels) {
		return nil, fmt.Errorf("weekly grid has %d slot rows but %d cell rows", len(slotLabels), len(cells))
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	writeTitle(pdf, title)

	timeWidth := 20.0
	dayWidth := (277.0 - timeWidth) / float64(len(days))

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(timeWidth, 7, "TIME", "1", 0, "C", false, 0, "")
	for _, day := range days {
		pdf.CellFormat(dayWidth, 7, day, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i, label := range slotLabels {
		pdf.CellFormat(timeWidth, 6, label, "1", 0, "C", false, 0, "")
		row := cells[i]
		for j := range days {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			pdf.CellFormat(dayWidth, 6, value, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(meetings) > 0 {
		writeLegend(pdf, meetings)
	}

	return output(pdf)
}

func writeLegend(pdf *gofpdf.Fpdf, meetings []ScheduleRow) {
	pdf.AddPage()
	writeTitle(pdf, "Course Details")

	pdf.SetFont("Arial", "B", 9)
	colWidth := 277.0 / float64(len(scheduleColumns))
	for _, column := range scheduleColumns {
		pdf.CellFormat(colWidth, 7, column, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, meeting := range meetings {
		for _, value := range meeting.record() {
			pdf.CellFormat(colWidth, 6, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeTitle(pdf *gofpdf.Fpdf, title string) {
	if title == "" {
		return
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(3)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
