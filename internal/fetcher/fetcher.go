// Package fetcher talks to the upstream market-data source. Results come
// back as a loosely-typed table because upstream column identity varies:
// casing differs between endpoints, an adjusted-close column appears for
// some symbols, and a few symbol shapes return compound "Field/SYMBOL"
// headers. The sync engine normalizes a Table before any other code sees
// it.
package fetcher

import (
	"context"
	"time"
)

// Table is a tabular OHLCV fetch result. Cells hold time.Time for dates
// and float64 for numbers, but may also carry strings or nil; consumers
// must coerce before arithmetic. A nil Table or zero rows means the
// upstream had no data for the window, which is a valid outcome.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the result carries no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Fetcher fetches daily OHLCV bars for a symbol over an inclusive date
// range. Implementations must honor ctx cancellation so one slow symbol
// cannot stall a whole sync run.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (*Table, error)
	Name() string
}
