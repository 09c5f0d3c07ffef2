// Package convert re-denominates a price series into a second currency by
// joining it with an FX series on date. One generic engine replaces the
// per-asset-type join logic the dashboard used to duplicate.
package convert

import (
	"errors"
	"math"
	"time"

	"FinBoard/internal/model"
)

// ErrEmptyFxSeries is returned when the FX series carries no observations
// at all. Proceeding would render a misleading all-undefined result, so
// the whole conversion is rejected instead.
var ErrEmptyFxSeries = errors.New("fx series is empty, cannot convert")

// Direction selects which side of the FX quote the asset sits on. The FX
// series quotes units of quote currency per 1 unit of base currency;
// multiply goes base to quote, divide goes quote to base.
type Direction string

const (
	Multiply Direction = "multiply"
	Divide   Direction = "divide"
)

// ParseDirection validates a direction string from a request parameter.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Multiply, Divide:
		return Direction(s), nil
	}
	return "", errors.New("direction must be multiply or divide")
}

// Converted is one joined observation. Rate and Value are NaN on dates
// the FX series does not cover: a stale rate is never carried forward,
// because silent staleness in a financial report is worse than a gap.
type Converted struct {
	Date     time.Time
	Original float64
	Rate     float64
	Value    float64
}

// Convert left-joins the asset series to the FX series on date and
// applies the conversion in the given direction. The result keeps every
// asset date, with NaN where the FX observation is missing.
func Convert(asset, fx []model.SeriesPoint, dir Direction) ([]Converted, error) {
	if len(fx) == 0 {
		return nil, ErrEmptyFxSeries
	}

	rates := make(map[time.Time]float64, len(fx))
	for _, p := range fx {
		rates[model.DayOf(p.Date)] = p.Value
	}

	out := make([]Converted, 0, len(asset))
	for _, p := range asset {
		c := Converted{Date: p.Date, Original: p.Value, Rate: math.NaN(), Value: math.NaN()}
		// A zero rate is degenerate data, not a quote; it counts as a
		// missing observation so Rate and Value stay undefined together.
		if rate, ok := rates[model.DayOf(p.Date)]; ok && !math.IsNaN(rate) && rate != 0 {
			c.Rate = rate
			if dir == Divide {
				c.Value = p.Value / rate
			} else {
				c.Value = p.Value * rate
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Materialize projects a conversion result into cacheable rows, dropping
// the undefined dates.
func Materialize(conv []Converted, currency string) []model.ConvertedPrice {
	var out []model.ConvertedPrice
	for _, c := range conv {
		if math.IsNaN(c.Value) {
			continue
		}
		out = append(out, model.ConvertedPrice{Date: c.Date, Price: c.Value, Currency: currency})
	}
	return out
}
