package indicator

import "math"

// tradingDaysPerYear is the annualization convention used uniformly for
// both annualized return and annualized volatility.
const tradingDaysPerYear = 252

// Returns computes simple daily returns r_t = close_t/close_{t-1} - 1.
// The first observation has no return; the result has len(closes)-1
// elements and feeds every statistic below, so composed exports stay
// internally consistent.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// CumulativeReturn is the compounded return over the series. An empty
// input is undefined, not zero.
func CumulativeReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	wealth := 1.0
	for _, r := range returns {
		wealth *= 1 + r
	}
	return wealth - 1
}

// AnnualizedReturn compounds the cumulative return to a 252-trading-day
// year. spanDays is the calendar-day span of the underlying series;
// a zero or negative span makes the result undefined rather than a
// division by zero.
func AnnualizedReturn(returns []float64, spanDays int) float64 {
	if len(returns) == 0 || spanDays <= 0 {
		return math.NaN()
	}
	cum := CumulativeReturn(returns)
	return math.Pow(1+cum, tradingDaysPerYear/float64(len(returns))) - 1
}

// AnnualizedVolatility scales the sample standard deviation (n-1
// denominator) of daily returns by sqrt(252). Undefined for fewer than
// two observations.
func AnnualizedVolatility(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(n-1)) * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown is the largest peak-to-trough decline of the cumulative
// wealth index, always <= 0 and exactly 0 for a series that never falls
// below a prior peak. Undefined for an empty input.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	wealth := 1.0
	peak := 1.0
	minDrawdown := 0.0
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		dd := (wealth - peak) / peak
		if dd < minDrawdown {
			minDrawdown = dd
		}
	}
	return minDrawdown
}

// Stats bundles the four return/risk statistics computed from one shared
// return series.
type Stats struct {
	CumulativeReturn     float64 `json:"cumulative_return"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	MaxDrawdown          float64 `json:"max_drawdown"`
}

// ComputeStats derives all four statistics from a close series. spanDays
// is the calendar span between the first and last observation.
func ComputeStats(closes []float64, spanDays int) Stats {
	returns := Returns(closes)
	return Stats{
		CumulativeReturn:     CumulativeReturn(returns),
		AnnualizedReturn:     AnnualizedReturn(returns, spanDays),
		AnnualizedVolatility: AnnualizedVolatility(returns),
		MaxDrawdown:          MaxDrawdown(returns),
	}
}
