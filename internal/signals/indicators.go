// Package signals provides technical indicator calculations
package signals

import (
	"math"
)

// Minimum observation counts per indicator. Below these an indicator is
// undefined (ok == false), never zero-valued.
const (
	MA200Period       = 200
	TrendSlopeMinObs  = 100
	VolatilityReturns = 30
	MACDFast          = 12
	MACDSlow          = 26
	MACDSignalSpan    = 9
	MACDMinObs        = 35 // slow span + signal span for a stable first value
	RSIPeriod         = 14
	MomentumDays      = 20
)

// Prices are ascending by date; the last element is the current close.

// SMA calculates the simple moving average over the trailing period.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), true
}

// MA200 returns the 200-day simple moving average and whether the
// current price sits above it.
func MA200(prices []float64) (ma float64, above bool, ok bool) {
	ma, ok = SMA(prices, MA200Period)
	if !ok {
		return 0, false, false
	}
	return ma, prices[len(prices)-1] > ma, true
}

// TrendSlope fits an ordinary least-squares regression of price against
// a synthetic 0..n-1 time index and returns the slope coefficient
// (price change per trading day). A cheap long-run directionality
// signal independent of short-term noise.
func TrendSlope(prices []float64) (float64, bool) {
	n := len(prices)
	if n < TrendSlopeMinObs {
		return 0, false
	}

	// slope = Σ(x-x̄)(y-ȳ) / Σ(x-x̄)²
	meanX := float64(n-1) / 2
	meanY := 0.0
	for _, p := range prices {
		meanY += p
	}
	meanY /= float64(n)

	var num, den float64
	for i, p := range prices {
		dx := float64(i) - meanX
		num += dx * (p - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// AnnualizedVolatility computes the standard deviation of the most
// recent 30 daily log returns, annualized by √252 and expressed as a
// percentage.
func AnnualizedVolatility(prices []float64) (float64, bool) {
	if len(prices) < VolatilityReturns+1 {
		return 0, false
	}

	returns := make([]float64, 0, VolatilityReturns)
	for i := len(prices) - VolatilityReturns; i < len(prices); i++ {
		prev := prices[i-1]
		cur := prices[i]
		if prev <= 0 || cur <= 0 {
			return 0, false
		}
		returns = append(returns, math.Log(cur/prev))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	// Sample variance (n-1), matching the usual rolling-std convention.
	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(returns)-1))

	return std * math.Sqrt(252) * 100, true
}

// emaSeries computes the exponential moving average series with the
// span convention α = 2/(span+1), seeded with the first value.
func emaSeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// MACD calculates Moving Average Convergence Divergence with spans
// 12/26 and a 9-span signal line. Returns the current MACD line,
// signal line and histogram.
func MACD(prices []float64) (line, signal, histogram float64, ok bool) {
	if len(prices) < MACDMinObs {
		return 0, 0, 0, false
	}

	fast := emaSeries(prices, MACDFast)
	slow := emaSeries(prices, MACDSlow)

	macdLine := make([]float64, len(prices))
	for i := range prices {
		macdLine[i] = fast[i] - slow[i]
	}

	signalLine := emaSeries(macdLine, MACDSignalSpan)

	last := len(prices) - 1
	line = macdLine[last]
	signal = signalLine[last]
	return line, signal, line - signal, true
}

// RSI calculates the Wilder-smoothed Relative Strength Index over 14
// periods (smoothing α = 1/14). When average loss is zero RS is
// unbounded and RSI saturates at 100.
func RSI(prices []float64) (float64, bool) {
	period := RSIPeriod
	if len(prices) < period+1 {
		return 0, false
	}

	// Seed with the simple mean of the first `period` changes.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder.
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// Momentum returns the percentage change between the current price and
// the price 20 trading days prior.
func Momentum(prices []float64) (float64, bool) {
	if len(prices) < MomentumDays+1 {
		return 0, false
	}
	ref := prices[len(prices)-1-MomentumDays]
	if ref == 0 {
		return 0, false
	}
	return (prices[len(prices)-1]/ref - 1) * 100, true
}
