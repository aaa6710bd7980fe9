package enrich

import (
	"github.com/HaliroESG/portfolio-project/internal/models"
)

// Merge reconciles a freshly computed record against the previously
// persisted one. Each rule applies independently, field by field:
//
//   - Valuation fields: a missing/zero candidate never erases a
//     non-zero stored value — transient provider gaps must not destroy
//     known valuations.
//   - data_status: a LOW_CONFIDENCE candidate does not downgrade an
//     instrument whose stored status was OK or STALE; one failed fetch
//     is not evidence against valid history.
//   - trend_state: a trend-change flag is raised only when both sides
//     are defined (neither UNKNOWN) and differ. Adjacent runs only.
//
// With no prior record the merge is the identity. The candidate is
// mutated in place and returned.
func Merge(candidate *models.InstrumentRecord, prior *models.PriorRecord) *models.InstrumentRecord {
	if prior == nil {
		candidate.TrendChanged = false
		return candidate
	}

	candidate.PERatio = keepPrior(candidate.PERatio, prior.PERatio)
	candidate.MarketCap = keepPrior(candidate.MarketCap, prior.MarketCap)

	if candidate.DataStatus == models.DataStatusLowConfidence &&
		(prior.DataStatus == models.DataStatusOK || prior.DataStatus == models.DataStatusStale) {
		candidate.DataStatus = prior.DataStatus
	}

	candidate.TrendChanged = trendChanged(prior.TrendState, candidate.TrendState)

	return candidate
}

// keepPrior returns the previous value when the candidate is missing or
// exactly zero and a non-zero previous value exists.
func keepPrior(candidate, prior *float64) *float64 {
	if (candidate == nil || *candidate == 0) && prior != nil && *prior != 0 {
		return prior
	}
	return candidate
}

func trendChanged(prev, next models.TrendState) bool {
	if prev == models.TrendUnknown || prev == "" || next == models.TrendUnknown || next == "" {
		return false
	}
	return prev != next
}
