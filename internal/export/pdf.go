package export

import (
	"fmt"
	"math"

	"FinBoard/internal/model"

	"github.com/go-pdf/fpdf"
)

// pdfMaxRows caps the daily table so the document stays a report, not a
// data dump; the spreadsheet export carries the full series.
const pdfMaxRows = 40

// WritePDF writes the report as a one-document PDF: title, the four
// percent-formatted statistics, and the most recent daily rows.
func WritePDF(r *Report, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	title := r.Name
	if title == "" {
		title = r.Symbol
	}
	pdf.CellFormat(0, 10, fmt.Sprintf("%s (%s) Performance Report", title, r.Symbol),
		"", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range r.statLines() {
		pdf.CellFormat(0, 8, fmt.Sprintf("%s: %s", line.Label, percent(line.Value)),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	withConversion := r.ConvertedCurrency != ""
	headers := []string{"Date", "Price " + orUnknown(r.Currency)}
	widths := []float64{28, 32}
	if withConversion {
		headers = append(headers, "FX Rate", "Price "+r.ConvertedCurrency)
		widths = append(widths, 28, 32)
	}
	headers = append(headers, "Volume")
	widths = append(widths, 34)

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	rows := r.Rows
	if len(rows) > pdfMaxRows {
		rows = rows[len(rows)-pdfMaxRows:]
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		cells := []string{row.Date.Format(model.DateFormat), number(row.Price)}
		if withConversion {
			cells = append(cells, number(row.FxRate), number(row.Converted))
		}
		cells = append(cells, fmt.Sprintf("%.0f", row.Volume))
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func number(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.4f", v)
}
