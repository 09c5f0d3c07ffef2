package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"FinBoard/internal/convert"
	"FinBoard/internal/indicator"
	"FinBoard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testInstrument() model.Instrument {
	return model.Instrument{
		ID: 1, Symbol: "AAPL", Name: "Apple",
		Classification: model.ClassEquity, Region: "US", Currency: "USD",
	}
}

func testPoints() []model.PricePoint {
	return []model.PricePoint{
		{Date: model.Date(2024, 3, 4), Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
		{Date: model.Date(2024, 3, 5), Open: 100, High: 111, Low: 100, Close: 110, Volume: 1200},
		{Date: model.Date(2024, 3, 6), Open: 110, High: 110, Low: 98, Close: 99, Volume: 900},
	}
}

func TestBuild_JoinsConversionByDate(t *testing.T) {
	conv := []convert.Converted{
		{Date: model.Date(2024, 3, 4), Original: 100, Rate: 31.5, Value: 3150},
		{Date: model.Date(2024, 3, 5), Original: 110, Rate: 31.6, Value: 3476},
		// no conversion for March 6
	}
	r := Build(testInstrument(), testPoints(), conv, "TWD")

	require.Len(t, r.Rows, 3)
	assert.Equal(t, "TWD", r.ConvertedCurrency)
	assert.Equal(t, 31.5, r.Rows[0].FxRate)
	assert.Equal(t, 3150.0, r.Rows[0].Converted)
	assert.True(t, math.IsNaN(r.Rows[2].FxRate), "uncovered date stays undefined")
	assert.True(t, math.IsNaN(r.Rows[2].Converted))
}

func TestBuild_StatsFromOriginalCurrency(t *testing.T) {
	conv := []convert.Converted{
		{Date: model.Date(2024, 3, 4), Original: 100, Rate: 31.5, Value: 3150},
	}
	r := Build(testInstrument(), testPoints(), conv, "TWD")

	// Conversion never changes the statistics block.
	want := indicator.ComputeStats([]float64{100, 110, 99}, 2)
	assert.InDelta(t, want.CumulativeReturn, r.Stats.CumulativeReturn, 1e-12)
	assert.InDelta(t, -0.01, r.Stats.CumulativeReturn, 1e-9)
	assert.InDelta(t, want.AnnualizedVolatility, r.Stats.AnnualizedVolatility, 1e-12)
}

func TestBuild_NoConversion(t *testing.T) {
	r := Build(testInstrument(), testPoints(), nil, "")
	assert.Empty(t, r.ConvertedCurrency)
	for _, row := range r.Rows {
		assert.True(t, math.IsNaN(row.FxRate))
		assert.True(t, math.IsNaN(row.Converted))
	}
}

func TestWriteExcel(t *testing.T) {
	conv := []convert.Converted{
		{Date: model.Date(2024, 3, 4), Original: 100, Rate: 31.5, Value: 3150},
	}
	r := Build(testInstrument(), testPoints(), conv, "TWD")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteExcel(r, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Statistics")
	assert.Contains(t, f.GetSheetList(), "Daily Prices")

	label, err := f.GetCellValue("Statistics", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Cumulative Return", label)

	header, err := f.GetCellValue("Daily Prices", "D1")
	require.NoError(t, err)
	assert.Equal(t, "Price (TWD)", header)

	date, err := f.GetCellValue("Daily Prices", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", date)
}

func TestWriteExcel_WithoutConversionOmitsFxColumns(t *testing.T) {
	r := Build(testInstrument(), testPoints(), nil, "")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteExcel(r, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Daily Prices", "C1")
	require.NoError(t, err)
	assert.Equal(t, "Volume", header)
}

func TestWritePDF(t *testing.T) {
	r := Build(testInstrument(), testPoints(), nil, "")

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, WritePDF(r, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
