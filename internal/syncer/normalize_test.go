package syncer

import (
	"testing"
	"time"

	"FinBoard/internal/fetcher"
	"FinBoard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "close", normalizeColumn("Close"))
	assert.Equal(t, "adj_close", normalizeColumn("Adj Close"))
	assert.Equal(t, "close", normalizeColumn("Close/USDJPY=X"))
	assert.Equal(t, "open", normalizeColumn("  OPEN "))
}

func TestNormalize_FullOHLCV(t *testing.T) {
	table := &fetcher.Table{
		Columns: []string{"Date", "Open", "High", "Low", "Close", "Volume"},
		Rows: [][]any{
			{model.Date(2024, 3, 1), 99.5, 101.0, 99.0, 100.0, 5000.0},
		},
	}
	points := normalize(table)
	require.Len(t, points, 1)

	p := points[0]
	assert.Equal(t, model.Date(2024, 3, 1), p.Date)
	assert.Equal(t, 99.5, p.Open)
	assert.Equal(t, 101.0, p.High)
	assert.Equal(t, 99.0, p.Low)
	assert.Equal(t, 100.0, p.Close)
	assert.Equal(t, 5000.0, p.Volume)
}

func TestNormalize_CompoundHeadersCloseOnly(t *testing.T) {
	// Spot FX shape: compound headers, close column only, no volume.
	table := &fetcher.Table{
		Columns: []string{"Date", "Close/USDTWD=X"},
		Rows: [][]any{
			{model.Date(2024, 3, 1), 31.5},
		},
	}
	points := normalize(table)
	require.Len(t, points, 1)

	p := points[0]
	assert.Equal(t, 31.5, p.Open, "open fills from close")
	assert.Equal(t, 31.5, p.High)
	assert.Equal(t, 31.5, p.Low)
	assert.Equal(t, 31.5, p.Close)
	assert.Equal(t, 0.0, p.Volume, "missing volume defaults to zero")
}

func TestNormalize_PartialColumnsKeepPresentValues(t *testing.T) {
	// Open is quoted but high/low are not: only the absent columns fall
	// back to close.
	table := &fetcher.Table{
		Columns: []string{"Date", "Open", "Close"},
		Rows: [][]any{
			{model.Date(2024, 3, 1), 99.5, 100.0},
		},
	}
	points := normalize(table)
	require.Len(t, points, 1)

	p := points[0]
	assert.Equal(t, 99.5, p.Open)
	assert.Equal(t, 100.0, p.High)
	assert.Equal(t, 100.0, p.Low)
	assert.Equal(t, 100.0, p.Close)
}

func TestNormalize_CoercesStringCells(t *testing.T) {
	table := &fetcher.Table{
		Columns: []string{"date", "close"},
		Rows: [][]any{
			{"2024-03-01", "151.25"},
		},
	}
	points := normalize(table)
	require.Len(t, points, 1)
	assert.Equal(t, model.Date(2024, 3, 1), points[0].Date)
	assert.Equal(t, 151.25, points[0].Close)
}

func TestNormalize_DropsInvalidRows(t *testing.T) {
	table := &fetcher.Table{
		Columns: []string{"Date", "Open", "High", "Low", "Close", "Volume"},
		Rows: [][]any{
			{model.Date(2024, 3, 1), 99.5, 101.0, 99.0, 100.0, 5000.0}, // valid
			{model.Date(2024, 3, 4), nil, 101.0, 99.0, 100.0, 5000.0}, // missing open
			{model.Date(2024, 3, 5), 99.5, 101.0, -1.0, 100.0, 5000.0}, // non-positive low
			{"not a date", 99.5, 101.0, 99.0, 100.0, 5000.0},           // bad date
			{model.Date(2024, 3, 7), 99.5, 101.0, 99.0, nil, 5000.0},  // missing close
		},
	}
	points := normalize(table)
	require.Len(t, points, 1)
	assert.Equal(t, model.Date(2024, 3, 1), points[0].Date)
}

func TestNormalize_CaseAndSpacingVariants(t *testing.T) {
	table := &fetcher.Table{
		Columns: []string{"DATE", "open", "High", "LOW", "cLoSe", "VOLUME"},
		Rows: [][]any{
			{model.Date(2024, 3, 1), 10.0, 11.0, 9.0, 10.5, 100.0},
		},
	}
	points := normalize(table)
	require.Len(t, points, 1)
	assert.Equal(t, 10.5, points[0].Close)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Nil(t, normalize(&fetcher.Table{}))
	assert.Nil(t, normalize(&fetcher.Table{Columns: []string{"Date", "Close"}}))
}

func TestNormalize_MissingRequiredColumns(t *testing.T) {
	table := &fetcher.Table{
		Columns: []string{"Date", "Open"},
		Rows:    [][]any{{model.Date(2024, 3, 1), 10.0}},
	}
	assert.Nil(t, normalize(table))
}

func TestToDate_TruncatesToUTCDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	d, ok := toDate(time.Date(2024, 3, 1, 14, 30, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, model.Date(2024, 3, 1), d)
}
