package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HaliroESG/portfolio-project/internal/enrich"
)

// RunReport summarizes one batch run.
type RunReport struct {
	RunID     string
	Processed int
	Failed    int
	Duration  time.Duration
}

// Run executes one full batch: currency sync, macro sync, then the
// per-instrument enrichment loop, and finally the portfolio snapshot.
// Instrument failures are isolated; the snapshot is appended only after
// every instrument has been attempted.
func (a *App) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	runID := uuid.NewString()
	a.Enrichment.SetRunID(runID)

	clock := a.clock
	if clock == nil {
		clock = time.Now
	}

	logger := a.Logger.With().Str("run_id", runID).Str("portfolio", a.Config.Portfolio).Logger()
	logger.Info().Msg("Batch run starting")

	// Currency rates first: the coverage aggregate needs them, and
	// non-EUR instruments are valued with them. A sync failure falls
	// back to the last persisted rates.
	if _, err := a.Enrichment.SyncCurrencies(ctx); err != nil {
		logger.Warn().Err(err).Msg("Currency sync failed, using persisted rates")
	}
	rates, err := a.Storage.RateStore().GetRates(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load currency rates, valuing non-EUR positions at parity")
		rates = map[string]float64{}
	}

	// Macro hub is informational and never blocks the run.
	if a.Config.Macro.Enabled {
		if err := a.Enrichment.SyncMacro(ctx); err != nil {
			logger.Warn().Err(err).Msg("Macro sync failed")
		}
	}

	instruments, err := a.Universe.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("universe is empty")
	}

	coverage := enrich.NewCoverageAggregator(a.Config.Portfolio, rates)

	report := &RunReport{RunID: runID}
	for _, inst := range instruments {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		record, err := a.Enrichment.EnrichInstrument(ctx, a.Config.Portfolio, inst)
		if err != nil {
			report.Failed++
			logger.Warn().Str("ticker", inst.Ticker).Err(err).Msg("Instrument enrichment failed")
			continue
		}
		report.Processed++
		coverage.Add(record)
	}

	// The snapshot reflects the run as a whole, so it is written only
	// once the loop is done.
	snapshot := coverage.Snapshot(runID, clock())
	if err := a.Storage.SnapshotStore().AppendSnapshot(ctx, snapshot); err != nil {
		logger.Error().Err(err).Msg("Failed to append portfolio snapshot")
	}

	report.Duration = time.Since(start)
	logger.Info().
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Float64("total_value_eur", snapshot.TotalValueEUR).
		Dur("duration", report.Duration).
		Msg("Batch run complete")

	return report, nil
}
