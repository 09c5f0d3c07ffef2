package syncer

import (
	"strconv"
	"strings"
	"time"

	"FinBoard/internal/fetcher"
	"FinBoard/internal/model"
)

// normalizeColumn collapses the upstream's column-name variants to one
// canonical identity: lower-cased, spaces as underscores, and compound
// "Field/SYMBOL" headers reduced to their field part.
func normalizeColumn(name string) string {
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// toFloat coerces a loosely-typed cell to a number. Strings are parsed so
// a text-typed upstream column never silently concatenates.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return model.DayOf(d), true
	case string:
		t, err := time.Parse(model.DateFormat, strings.TrimSpace(d))
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// normalize flattens a fetch result to validated price points:
//   - column identity is standardized (case, spacing, compound headers)
//   - an absent open/high/low column is filled from close (spot FX only
//     quotes a close); columns that are present keep their values
//   - missing volume defaults to zero
//   - rows with a missing date or OHLC field are dropped
//   - rows with any OHLC value <= 0 are dropped
//
// Dropped rows are not an error; the caller compares input and output
// counts to notice a wholly invalid result.
func normalize(t *fetcher.Table) []model.PricePoint {
	if t.Empty() {
		return nil
	}

	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		name := normalizeColumn(c)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	dateCol, hasDate := idx["date"]
	closeCol, hasClose := idx["close"]
	if !hasDate || !hasClose {
		return nil
	}
	openCol, hasOpen := idx["open"]
	highCol, hasHigh := idx["high"]
	lowCol, hasLow := idx["low"]
	volCol, hasVol := idx["volume"]

	var out []model.PricePoint
	for _, row := range t.Rows {
		cell := func(i int) any {
			if i < len(row) {
				return row[i]
			}
			return nil
		}

		date, ok := toDate(cell(dateCol))
		if !ok {
			continue
		}
		closeV, ok := toFloat(cell(closeCol))
		if !ok {
			continue
		}

		// An absent column falls back to close; a present cell must
		// coerce or the row is dropped.
		field := func(col int, has bool) (float64, bool) {
			if !has {
				return closeV, true
			}
			return toFloat(cell(col))
		}
		open, okO := field(openCol, hasOpen)
		high, okH := field(highCol, hasHigh)
		low, okL := field(lowCol, hasLow)
		if !okO || !okH || !okL {
			continue
		}

		if open <= 0 || high <= 0 || low <= 0 || closeV <= 0 {
			continue
		}

		volume := 0.0
		if hasVol {
			if v, ok := toFloat(cell(volCol)); ok {
				volume = v
			}
		}

		out = append(out, model.PricePoint{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeV,
			Volume: volume,
		})
	}
	return out
}
