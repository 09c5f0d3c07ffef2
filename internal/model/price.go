package model

import "time"

// DateFormat is the canonical layout for trading dates. Price rows carry a
// calendar date only, no time component.
const DateFormat = "2006-01-02"

// Date builds a UTC midnight timestamp for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf truncates t to its calendar date in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PricePoint is one daily OHLCV bar for an instrument. At most one row
// exists per (instrument, date); open/high/low/close are strictly positive.
type PricePoint struct {
	InstrumentID int64     `json:"-"`
	Date         time.Time `json:"date"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
}

// SeriesPoint is one observation of a derived, in-memory series.
// Value may be NaN where the series is undefined (warm-up windows,
// missing FX observations).
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// CloseSeries projects the close column out of a price series.
func CloseSeries(points []PricePoint) []SeriesPoint {
	out := make([]SeriesPoint, len(points))
	for i, p := range points {
		out[i] = SeriesPoint{Date: p.Date, Value: p.Close}
	}
	return out
}

// Closes projects the close column as a bare float slice for the
// indicator functions.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// ConvertedPrice is a cached re-denomination of one price point. The cache
// is not authoritative: it is dropped and regenerated in full whenever the
// backing FX series changes.
type ConvertedPrice struct {
	Date     time.Time
	Price    float64
	Currency string
}
