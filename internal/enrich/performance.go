// Package enrich turns aligned market data into reconciled instrument records
package enrich

import (
	"time"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// Trading-day offsets from the current observation for each horizon.
const (
	perfDayOffset   = 1  // previous trading day
	perfWeekOffset  = 5  // 5 trading days back
	perfMonthOffset = 21 // 22 trading days back (index −22)
)

// ComputePerformance derives the EUR and local-currency return families
// from an aligned series. EUR carries day/week/month/YTD; local carries
// day/YTD only, matching the persisted schema this engine reconciles
// against. Metrics without enough history are nil.
//
// asOf anchors the YTD baseline: the last observation strictly before
// January 1 of asOf's year.
func ComputePerformance(aligned models.AlignedSeries, asOf time.Time) (eur, local models.Performance) {
	if len(aligned) == 0 {
		return eur, local
	}

	eurValues := aligned.ValuesEUR()
	prices := aligned.Prices()
	last := len(aligned) - 1

	eur.Day = returnAt(eurValues, perfDayOffset)
	eur.Week = returnAt(eurValues, perfWeekOffset)
	eur.Month = returnAt(eurValues, perfMonthOffset)
	local.Day = returnAt(prices, perfDayOffset)

	// YTD baseline: last row dated before Jan 1 of the current year.
	cutoff := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	baseline := -1
	for i := last; i >= 0; i-- {
		if aligned[i].Date.Before(cutoff) {
			baseline = i
			break
		}
	}
	if baseline >= 0 {
		eur.YTD = simpleReturn(eurValues[last], eurValues[baseline])
		local.YTD = simpleReturn(prices[last], prices[baseline])
	}

	return eur, local
}

// returnAt computes current/reference − 1 against the value `offset`
// rows back, nil when the series is too short.
func returnAt(values []float64, offset int) *float64 {
	last := len(values) - 1
	if last-offset < 0 {
		return nil
	}
	return simpleReturn(values[last], values[last-offset])
}

func simpleReturn(current, reference float64) *float64 {
	if reference == 0 {
		return nil
	}
	return models.Float(current/reference - 1)
}
