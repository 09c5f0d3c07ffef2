// Package indicator computes technical indicators and return/risk
// statistics over an ascending-by-date close series. All functions are
// pure; math.NaN() marks the warm-up points where a value is undefined.
package indicator

import (
	"errors"
	"math"
)

// SMA computes the simple moving average over the trailing window. The
// first window-1 points are NaN: a series shorter than the window yields
// all-NaN values, never a partial-window mean.
func SMA(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := nanSlice(len(closes))
	if len(closes) < window {
		return out, nil
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}

// EMA computes the exponential moving average, seeded with the SMA of the
// first period values. The first period-1 points are NaN.
func EMA(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := nanSlice(len(closes))
	if len(closes) < period {
		return out, nil
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += closes[i]
	}
	ema := seed / float64(period)
	out[period-1] = ema

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}

// RSI computes the Wilder-smoothed relative strength index. The first
// length points are NaN; defined values lie in [0, 100].
func RSI(closes []float64, length int) ([]float64, error) {
	if length <= 0 {
		return nil, errors.New("length must be positive")
	}
	out := nanSlice(len(closes))
	if len(closes) < length+1 {
		return out, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= length; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(length)
	avgLoss /= float64(length)
	out[length] = rsiValue(avgGain, avgLoss)

	for i := length + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(length-1) + gain) / float64(length)
		avgLoss = (avgLoss*float64(length-1) + loss) / float64(length)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// MACD derives all three spans from one base period: fast = basePeriod,
// slow = 2*basePeriod, signal = max(basePeriod/2, 1). This single-knob
// convention matches the dashboard's MACD period selector; it coincides
// with the traditional 12/26/9 parameters only in the fast and slow spans
// when basePeriod is 12, and deviates otherwise.
//
// Returns the MACD line, the signal line, and the histogram (MACD minus
// signal), each NaN through its warm-up.
func MACD(closes []float64, basePeriod int) (macd, signal, hist []float64, err error) {
	if basePeriod <= 0 {
		return nil, nil, nil, errors.New("base period must be positive")
	}
	fast := basePeriod
	slow := 2 * basePeriod
	signalPeriod := basePeriod / 2
	if signalPeriod < 1 {
		signalPeriod = 1
	}

	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, nil, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, nil, err
	}

	n := len(closes)
	macd = nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal is an EMA over the defined part of the MACD line.
	signal = nanSlice(n)
	offset := slow - 1
	if offset < n {
		signalTail, err := EMA(macd[offset:], signalPeriod)
		if err != nil {
			return nil, nil, nil, err
		}
		copy(signal[offset:], signalTail)
	}

	hist = nanSlice(n)
	for i := 0; i < n; i++ {
		hist[i] = macd[i] - signal[i] // NaN propagates through warm-ups
	}
	return macd, signal, hist, nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
