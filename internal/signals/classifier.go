package signals

import (
	"github.com/HaliroESG/portfolio-project/internal/models"
)

// ClassifyTrend maps the current indicator set to a trend state. It is
// a pure, stateless classification; run-over-run transitions are
// detected by the reconciliation merge, not here.
//
// Any undefined input (insufficient history) yields UNKNOWN.
func ClassifyTrend(ind models.Indicators) models.TrendState {
	if ind.MACDLine == nil || ind.MACDSignal == nil || ind.RSI14 == nil || ind.Momentum20 == nil {
		return models.TrendUnknown
	}

	macd := *ind.MACDLine
	signal := *ind.MACDSignal
	rsi := *ind.RSI14
	momentum := *ind.Momentum20

	if macd > signal && rsi >= 60 && momentum > 0 {
		return models.TrendBullish
	}
	if macd < signal && rsi < 40 && momentum < 0 {
		return models.TrendBearish
	}
	return models.TrendNeutral
}

// Compute runs every indicator over the aligned series and assembles
// the record's indicator block plus the derived trend state. Prices are
// the local-currency closes; trendPrices is the maximal-history series
// for the long-horizon slope (falls back to prices when absent).
func Compute(prices []float64, trendPrices []float64) (models.Indicators, models.TrendState) {
	var ind models.Indicators

	if ma, above, ok := MA200(prices); ok {
		ind.MA200 = models.Float(ma)
		if above {
			ind.MA200Status = "above"
		} else {
			ind.MA200Status = "below"
		}
	}

	if len(trendPrices) == 0 {
		trendPrices = prices
	}
	if slope, ok := TrendSlope(trendPrices); ok {
		ind.TrendSlope = models.Float(slope)
	}

	if vol, ok := AnnualizedVolatility(prices); ok {
		ind.Volatility30 = models.Float(vol)
	}

	if line, signal, hist, ok := MACD(prices); ok {
		ind.MACDLine = models.Float(line)
		ind.MACDSignal = models.Float(signal)
		ind.MACDHistogram = models.Float(hist)
	}

	if rsi, ok := RSI(prices); ok {
		ind.RSI14 = models.Float(rsi)
	}

	if mom, ok := Momentum(prices); ok {
		ind.Momentum20 = models.Float(mom)
	}

	return ind, ClassifyTrend(ind)
}
