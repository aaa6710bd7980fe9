package interfaces

import (
	"context"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// EnrichmentService runs the per-instrument enrichment and
// reconciliation pipeline.
type EnrichmentService interface {
	// EnrichInstrument fetches, computes, merges and persists one
	// instrument's record. The returned record is the merged one.
	EnrichInstrument(ctx context.Context, portfolio string, instrument models.Instrument) (*models.InstrumentRecord, error)

	// SyncCurrencies refreshes the CODE→EUR rate table and returns the
	// current rates (EUR implicitly 1.0).
	SyncCurrencies(ctx context.Context) (map[string]float64, error)

	// SyncMacro refreshes the macro hub indicators.
	SyncMacro(ctx context.Context) error

	// SetRunID stamps all records produced by subsequent calls.
	SetRunID(runID string)

	// SetClock overrides the time source used for record timestamps.
	SetClock(now func() time.Time)
}
