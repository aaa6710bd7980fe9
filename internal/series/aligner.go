// Package series aligns asset and FX price series onto one calendar
package series

import (
	"errors"
	"fmt"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// ErrInsufficientHistory signals that a series is too short for
// day-over-day work. It is a recoverable per-instrument condition, not
// a batch failure.
var ErrInsufficientHistory = errors.New("insufficient history")

// MinObservations is the minimum series length required by the
// downstream performance calculator (current + previous day).
const MinObservations = 2

// AlignEUR builds the aligned series for a EUR-denominated instrument:
// the rate is identically 1.0 and the EUR value equals the price.
func AlignEUR(asset models.PriceSeries) (models.AlignedSeries, error) {
	if len(asset) < MinObservations {
		return nil, fmt.Errorf("%w: %d observations, need at least %d", ErrInsufficientHistory, len(asset), MinObservations)
	}

	aligned := make(models.AlignedSeries, len(asset))
	for i, bar := range asset {
		aligned[i] = models.AlignedPoint{
			Date:     bar.Date,
			Price:    bar.Close,
			FX:       1.0,
			ValueEUR: bar.Close,
		}
	}
	return aligned, nil
}

// Align reindexes the FX series onto the asset series' dates using
// last-known-value carry-forward and derives the EUR value column
// (price × fx). The output always has exactly one row per asset bar.
//
// FX exchanges and equity exchanges observe different holidays, so FX
// dates rarely match asset dates exactly; the carry-forward covers
// those gaps. Rows before the first FX observation keep FX = 0 and no
// EUR value; only a leading gap is possible. An empty fx series is a
// full leading gap: every row's EUR value stays undefined, never the
// parity rate. EUR instruments go through AlignEUR instead.
func Align(asset models.PriceSeries, fx models.PriceSeries) (models.AlignedSeries, error) {
	if len(asset) < MinObservations {
		return nil, fmt.Errorf("%w: %d observations, need at least %d", ErrInsufficientHistory, len(asset), MinObservations)
	}

	aligned := make(models.AlignedSeries, len(asset))

	// Walk both ascending series once, carrying the last FX close
	// observed on or before each asset date.
	fxIdx := 0
	lastFX := 0.0
	haveFX := false

	for i, bar := range asset {
		for fxIdx < len(fx) && !fx[fxIdx].Date.After(bar.Date) {
			if fx[fxIdx].Close != 0 {
				lastFX = fx[fxIdx].Close
				haveFX = true
			}
			fxIdx++
		}

		point := models.AlignedPoint{
			Date:  bar.Date,
			Price: bar.Close,
		}
		if haveFX {
			point.FX = lastFX
			point.ValueEUR = bar.Close * lastFX
		}
		aligned[i] = point
	}

	return aligned, nil
}
