// Package indicator provides stateless technical indicator functions over an
// ordered series of closing prices. Every function reports a second boolean
// return that is false when the series is too short for the indicator to be
// defined; callers treat that as "no signal yet" rather than an error.
package indicator

import "math"

// SMA returns the simple moving average of the last window prices.
func SMA(prices []float64, window int) (float64, bool) {
	if window <= 0 || len(prices) < window {
		return 0, false
	}

	total := 0.0
	for _, p := range prices[len(prices)-window:] {
		total += p
	}
	return total / float64(window), true
}

// EMA returns the exponential moving average with the given window. The
// first EMA value is seeded with the SMA of the first window prices, then the
// recurrence ema = price*k + ema*(1-k), k = 2/(window+1), is applied over the
// remaining prices. With exactly window prices the result equals the seed SMA.
func EMA(prices []float64, window int) (float64, bool) {
	if window <= 0 || len(prices) < window {
		return 0, false
	}

	ema, _ := SMA(prices[:window], window)
	k := 2.0 / float64(window+1)
	for _, p := range prices[window:] {
		ema = p*k + ema*(1-k)
	}
	return ema, true
}

// RSI returns the relative strength index over the most recent window price
// deltas. Needs at least window+1 prices. When the window contains no losses
// the RSI is 100 by definition.
func RSI(prices []float64, window int) (float64, bool) {
	if window <= 0 || len(prices) < window+1 {
		return 0, false
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0
	for _, g := range gains[len(gains)-window:] {
		avgGain += g
	}
	for _, l := range losses[len(losses)-window:] {
		avgLoss += l
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// MACDValue holds the three MACD outputs for the latest bar.
type MACDValue struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD returns the moving average convergence divergence for the latest bar.
// The MACD line is EMA(fast) minus EMA(slow) over the full series. The signal
// line is the SMA of the trailing signal-many MACD values, each recomputed by
// re-evaluating both EMAs on the price prefix ending at that bar. Needs at
// least slow+signal prices.
func MACD(prices []float64, fast, slow, signal int) (MACDValue, bool) {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(prices) < slow+signal {
		return MACDValue{}, false
	}

	emaFast, okF := EMA(prices, fast)
	emaSlow, okS := EMA(prices, slow)
	if !okF || !okS {
		return MACDValue{}, false
	}
	macdLine := emaFast - emaSlow

	macdValues := make([]float64, 0, len(prices)-slow)
	for i := slow; i < len(prices); i++ {
		f, okF := EMA(prices[:i+1], fast)
		s, okS := EMA(prices[:i+1], slow)
		if okF && okS {
			macdValues = append(macdValues, f-s)
		}
	}

	signalLine, ok := SMA(macdValues, signal)
	if !ok {
		return MACDValue{}, false
	}

	return MACDValue{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: macdLine - signalLine,
	}, true
}

// Bands holds the Bollinger band levels for the latest bar.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands returns the Bollinger bands: middle = SMA(window), upper and
// lower at numStd population standard deviations around it.
func BollingerBands(prices []float64, window int, numStd float64) (Bands, bool) {
	middle, ok := SMA(prices, window)
	if !ok {
		return Bands{}, false
	}

	variance := 0.0
	for _, p := range prices[len(prices)-window:] {
		d := p - middle
		variance += d * d
	}
	variance /= float64(window)
	std := math.Sqrt(variance)

	return Bands{
		Upper:  middle + numStd*std,
		Middle: middle,
		Lower:  middle - numStd*std,
	}, true
}

// Momentum returns the rate of change against the price period bars ago:
// (price[t] - price[t-period]) / price[t-period]. Needs period+1 prices.
func Momentum(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}

	prev := prices[len(prices)-period-1]
	return (prices[len(prices)-1] - prev) / prev, true
}
