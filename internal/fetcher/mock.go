package fetcher

import (
	"context"
	"time"
)

// MockFetcher returns canned tables for development and testing.
type MockFetcher struct {
	Tables map[string]*Table
	Errs   map[string]error
	Calls  []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol string, _, _ time.Time) (*Table, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	return m.Tables[symbol], nil
}

// DailyTable builds a flat OHLCV table starting at the given date, one row
// per calendar day, closes drifting upward from basePrice.
func DailyTable(start time.Time, days int, basePrice float64) *Table {
	rows := make([][]any, 0, days)
	for i := 0; i < days; i++ {
		p := basePrice * (1 + float64(i)*0.001)
		rows = append(rows, []any{
			start.AddDate(0, 0, i),
			p * 0.999, p * 1.005, p * 0.995, p, 1000000.0,
		})
	}
	return &Table{
		Columns: []string{"Date", "Open", "High", "Low", "Close", "Volume"},
		Rows:    rows,
	}
}
