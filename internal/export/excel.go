package export

import (
	"fmt"
	"math"

	"FinBoard/internal/model"

	"github.com/xuri/excelize/v2"
)

// WriteExcel writes the report as a workbook with a statistics sheet
// (percent-formatted) and a daily price sheet.
func WriteExcel(r *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const statsSheet = "Statistics"
	const dailySheet = "Daily Prices"

	if err := f.SetSheetName("Sheet1", statsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(dailySheet); err != nil {
		return fmt.Errorf("create daily sheet: %w", err)
	}

	percentFmt := "0.00%"
	percentStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt})
	if err != nil {
		return fmt.Errorf("percent style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("bold style: %w", err)
	}

	// Statistics sheet: label column bold, value column as percent.
	f.SetCellValue(statsSheet, "A1", "Metric")
	f.SetCellValue(statsSheet, "B1", "Value")
	f.SetCellStyle(statsSheet, "A1", "B1", boldStyle)
	for i, line := range r.statLines() {
		rowIdx := i + 2
		f.SetCellValue(statsSheet, fmt.Sprintf("A%d", rowIdx), line.Label)
		if !math.IsNaN(line.Value) {
			f.SetCellValue(statsSheet, fmt.Sprintf("B%d", rowIdx), line.Value)
		}
		f.SetCellStyle(statsSheet, fmt.Sprintf("B%d", rowIdx), fmt.Sprintf("B%d", rowIdx), percentStyle)
	}
	f.SetColWidth(statsSheet, "A", "A", 24)
	f.SetColWidth(statsSheet, "B", "B", 18)

	// Daily sheet.
	headers := []string{"Date", "Price (" + orUnknown(r.Currency) + ")"}
	withConversion := r.ConvertedCurrency != ""
	if withConversion {
		headers = append(headers, "FX Rate", "Price ("+r.ConvertedCurrency+")")
	}
	headers = append(headers, "Volume")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(dailySheet, cell, h)
	}
	f.SetCellStyle(dailySheet, "A1", fmt.Sprintf("%c1", 'A'+len(headers)-1), boldStyle)

	for i, row := range r.Rows {
		values := []any{row.Date.Format(model.DateFormat), row.Price}
		if withConversion {
			values = append(values, nanBlank(row.FxRate), nanBlank(row.Converted))
		}
		values = append(values, row.Volume)
		for j, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(dailySheet, cell, v)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(dailySheet, "A", lastCol, 16)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func nanBlank(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func orUnknown(currency string) string {
	if currency == "" {
		return "native"
	}
	return currency
}
