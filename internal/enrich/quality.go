package enrich

import (
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
)

// QualityResult is the data-quality classification for one instrument:
// the status plus the (possibly repaired) last-trade timestamp.
type QualityResult struct {
	Status      models.DataStatus
	LastTradeAt time.Time
	Repaired    bool
}

// ClassifyQuality validates the latest price and last-trade timestamp.
//
// Order matters: a missing or zero price dominates everything and
// yields LOW_CONFIDENCE. Once the price is confirmed valid, a broken
// timestamp (zero, pre-MinPlausibleYear, or older than MaxStaleAge) is
// repaired to asOf and the instrument stays OK — a valid price with a
// suspect timestamp is corrected, not penalized. Only a plausible
// timestamp between StaleAfter and MaxStaleAge old produces STALE.
func ClassifyQuality(lastPrice float64, lastTrade time.Time, asOf time.Time, cfg common.EngineConfig) QualityResult {
	if lastPrice == 0 {
		return QualityResult{
			Status:      models.DataStatusLowConfidence,
			LastTradeAt: lastTrade,
		}
	}

	if lastTrade.IsZero() || lastTrade.Year() < minPlausibleYear(cfg) {
		return QualityResult{
			Status:      models.DataStatusOK,
			LastTradeAt: asOf,
			Repaired:    true,
		}
	}

	age := asOf.Sub(lastTrade)
	if age > cfg.MaxStaleAge() {
		// Multi-year staleness is bad data, not an illiquid quote.
		return QualityResult{
			Status:      models.DataStatusOK,
			LastTradeAt: asOf,
			Repaired:    true,
		}
	}
	if age > cfg.StaleAfter() {
		return QualityResult{
			Status:      models.DataStatusStale,
			LastTradeAt: lastTrade,
		}
	}

	return QualityResult{
		Status:      models.DataStatusOK,
		LastTradeAt: lastTrade,
	}
}

func minPlausibleYear(cfg common.EngineConfig) int {
	if cfg.MinPlausibleYear > 0 {
		return cfg.MinPlausibleYear
	}
	return 2000
}
