// Package export builds the tabular report consumed by the spreadsheet
// and PDF writers: daily prices with FX context plus a four-row block of
// return/risk statistics.
package export

import (
	"math"
	"time"

	"FinBoard/internal/convert"
	"FinBoard/internal/indicator"
	"FinBoard/internal/model"
)

// Row is one daily line of the report. FxRate and Converted are NaN when
// no conversion applies to that date.
type Row struct {
	Date      time.Time
	Price     float64
	FxRate    float64
	Converted float64
	Volume    float64
}

// Report carries everything the document writers need.
type Report struct {
	Symbol            string
	Name              string
	Currency          string // native currency of the price column
	ConvertedCurrency string // empty when no conversion was requested
	Rows              []Row
	Stats             indicator.Stats
}

// statLine pairs a label with a percent-formatted statistic for the
// writers.
type statLine struct {
	Label string
	Value float64
}

func (r *Report) statLines() []statLine {
	return []statLine{
		{"Cumulative Return", r.Stats.CumulativeReturn},
		{"Annualized Return", r.Stats.AnnualizedReturn},
		{"Annualized Volatility", r.Stats.AnnualizedVolatility},
		{"Max Drawdown", r.Stats.MaxDrawdown},
	}
}

// Build assembles a report from a stored price series and an optional
// conversion result. conv may be nil when the series is already in the
// requested currency. Statistics always come from the original-currency
// closes so the four numbers share one return series.
func Build(inst model.Instrument, points []model.PricePoint, conv []convert.Converted, convertedCurrency string) *Report {
	r := &Report{
		Symbol:            inst.Symbol,
		Name:              inst.Name,
		Currency:          inst.Currency,
		ConvertedCurrency: convertedCurrency,
	}

	rates := make(map[time.Time]convert.Converted, len(conv))
	for _, c := range conv {
		rates[model.DayOf(c.Date)] = c
	}

	for _, p := range points {
		row := Row{Date: p.Date, Price: p.Close, Volume: p.Volume,
			FxRate: math.NaN(), Converted: math.NaN()}
		if c, ok := rates[model.DayOf(p.Date)]; ok {
			row.FxRate = c.Rate
			row.Converted = c.Value
		}
		r.Rows = append(r.Rows, row)
	}

	r.Stats = indicator.ComputeStats(model.Closes(points), spanDays(points))
	return r
}

func spanDays(points []model.PricePoint) int {
	if len(points) < 2 {
		return 0
	}
	first := points[0].Date
	last := points[len(points)-1].Date
	return int(last.Sub(first).Hours() / 24)
}
