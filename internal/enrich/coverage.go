package enrich

import (
	"time"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// CoverageAggregator folds merged instrument records into one
// portfolio-level value/coverage snapshot per run. It is only ever
// appended to by the single batch thread; the snapshot must be taken
// strictly after every instrument merge completes.
type CoverageAggregator struct {
	portfolio string
	rates     map[string]float64 // CODE→EUR, 1:1 when absent
	total     float64
	covered   float64
	count     int
}

// NewCoverageAggregator creates an aggregator for one run. rates maps
// currency codes to EUR conversion rates; unknown codes default to 1:1.
func NewCoverageAggregator(portfolio string, rates map[string]float64) *CoverageAggregator {
	return &CoverageAggregator{
		portfolio: portfolio,
		rates:     rates,
	}
}

// Add accumulates one merged record: position value in EUR is
// last price × held quantity × conversion rate. Value from instruments
// with acceptable data quality (OK or STALE) counts toward coverage;
// LOW_CONFIDENCE value inflates only the total.
func (a *CoverageAggregator) Add(record *models.InstrumentRecord) {
	rate := 1.0
	if record.Currency != "" && record.Currency != "EUR" {
		if r, ok := a.rates[record.Currency]; ok && r > 0 {
			rate = r
		}
	}

	value := record.LastPrice * record.Quantity * rate
	a.total += value
	a.count++

	if record.DataStatus == models.DataStatusOK || record.DataStatus == models.DataStatusStale {
		a.covered += value
	}
}

// Snapshot emits the immutable snapshot for this run. Coverage
// percentage is defined only when the total is positive.
func (a *CoverageAggregator) Snapshot(runID string, asOf time.Time) *models.PortfolioSnapshot {
	snap := &models.PortfolioSnapshot{
		Portfolio:       a.portfolio,
		Date:            asOf.Format("2006-01-02"),
		TotalValueEUR:   a.total,
		CoveredValueEUR: a.covered,
		InstrumentCount: a.count,
		RunID:           runID,
		CreatedAt:       asOf,
	}
	if a.total > 0 {
		snap.CoveragePct = models.Float(a.covered / a.total * 100)
	}
	return snap
}
