package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/HaliroESG/portfolio-project/internal/series"
	"github.com/HaliroESG/portfolio-project/internal/signals"
)

// Service implements EnrichmentService: the per-instrument pipeline of
// fetch → align → compute → resolve → classify → merge → persist, plus
// the currency and macro hub syncs.
type Service struct {
	market  interfaces.MarketDataClient
	storage interfaces.StorageManager
	config  common.EngineConfig
	logger  *common.Logger
	runID   string
	now     func() time.Time
}

// NewService creates a new enrichment service.
func NewService(
	market interfaces.MarketDataClient,
	storage interfaces.StorageManager,
	config common.EngineConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		market:  market,
		storage: storage,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// SetRunID stamps all records produced by this service with a run ID.
func (s *Service) SetRunID(runID string) {
	s.runID = runID
}

// SetClock overrides the service clock. Used in tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// fxSymbol builds the provider symbol for a CODE→EUR pair.
func fxSymbol(currency string) string {
	return strings.ToUpper(currency) + "EUR=X"
}

// EnrichInstrument runs the full pipeline for one instrument and
// returns the merged, persisted record. Errors are per-instrument and
// recoverable: the caller logs and moves on, leaving prior persisted
// state untouched (no candidate, no merge).
func (s *Service) EnrichInstrument(ctx context.Context, portfolio string, inst models.Instrument) (*models.InstrumentRecord, error) {
	now := s.now()
	currency := strings.ToUpper(inst.Currency)
	if currency == "" {
		currency = "EUR"
	}

	// Short-horizon series for performance and most indicators.
	asset, err := s.market.GetDailyBars(ctx, inst.Ticker, s.config.HistoryRange)
	if err != nil {
		return nil, fmt.Errorf("fetch price series for %s: %w", inst.Ticker, err)
	}
	if len(asset) < series.MinObservations {
		return nil, fmt.Errorf("%s: %w (%d observations)", inst.Ticker, series.ErrInsufficientHistory, len(asset))
	}

	// FX pair, aligned onto the asset calendar. EUR instruments take
	// the identity rate; for anything else the fetched series is used
	// as-is, so an empty FX response leaves every EUR figure undefined
	// rather than silently valued at parity.
	var aligned models.AlignedSeries
	if currency == "EUR" {
		aligned, err = series.AlignEUR(asset)
	} else {
		fx, fxErr := s.market.GetDailyBars(ctx, fxSymbol(currency), s.config.HistoryRange)
		if fxErr != nil {
			return nil, fmt.Errorf("fetch FX series %s: %w", fxSymbol(currency), fxErr)
		}
		if len(fx) == 0 {
			s.logger.Warn().Str("ticker", inst.Ticker).Str("pair", fxSymbol(currency)).Msg("FX history is empty, EUR figures will be undefined")
		}
		aligned, err = series.Align(asset, fx)
	}
	if err != nil {
		return nil, fmt.Errorf("align %s: %w", inst.Ticker, err)
	}

	// Maximal history for the long-horizon trend slope. Best effort: a
	// failed fetch falls back to the short-horizon series.
	var trendPrices []float64
	if s.config.TrendRange != "" && s.config.TrendRange != s.config.HistoryRange {
		trendBars, err := s.market.GetDailyBars(ctx, inst.Ticker, s.config.TrendRange)
		if err != nil {
			s.logger.Warn().Str("ticker", inst.Ticker).Err(err).Msg("Long-horizon fetch failed, using short-horizon series for trend")
		} else {
			trendPrices = trendBars.Closes()
		}
	}

	// Metadata is optional: a failed or empty fetch leaves the
	// valuation chains to resolve against nothing and the quality
	// classifier to repair the timestamp.
	meta, err := s.market.GetQuoteMetadata(ctx, inst.Ticker)
	if err != nil {
		s.logger.Warn().Str("ticker", inst.Ticker).Err(err).Msg("Metadata fetch failed, valuation will fall back to stored values")
		meta = nil
	}

	candidate := s.buildCandidate(portfolio, inst, currency, aligned, trendPrices, meta, now)

	// Read prior state and reconcile. Absent prior means first run and
	// merge is the identity. Any other read failure aborts this
	// instrument: merging against an empty prior would let a sparse
	// candidate overwrite valid stored values.
	prior, err := s.storage.WatchStore().GetPrior(ctx, portfolio, inst.Ticker)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("read prior record for %s: %w", inst.Ticker, err)
		}
		prior = nil
	}
	merged := Merge(candidate, prior)

	if err := s.saveRecord(ctx, merged); err != nil {
		return nil, err
	}

	if s.config.Charts {
		s.renderChart(inst.Ticker, aligned)
	}

	return merged, nil
}

// buildCandidate assembles this run's record from the component
// outputs.
func (s *Service) buildCandidate(
	portfolio string,
	inst models.Instrument,
	currency string,
	aligned models.AlignedSeries,
	trendPrices []float64,
	meta *models.QuoteMetadata,
	now time.Time,
) *models.InstrumentRecord {
	prices := aligned.Prices()
	perfEUR, perfLocal := ComputePerformance(aligned, now)
	indicators, trendState := signals.Compute(prices, trendPrices)

	lastPrice := prices[len(prices)-1]

	var lastTrade time.Time
	if meta != nil && meta.RegularMarketTime != nil {
		lastTrade = *meta.RegularMarketTime
	}
	quality := ClassifyQuality(lastPrice, lastTrade, now, s.config)
	if quality.Repaired {
		s.logger.Debug().Str("ticker", inst.Ticker).Time("raw", lastTrade).Msg("Implausible last-trade timestamp repaired")
	}

	quantity := inst.Quantity
	if quantity == 0 {
		quantity = 1
	}

	name := inst.Name
	if name == "" {
		name = inst.Ticker
	}

	peRatio, peSource := ResolvePE(meta)
	marketCap, capSource := ResolveMarketCap(meta)
	if peSource != "" || capSource != "" {
		s.logger.Debug().
			Str("ticker", inst.Ticker).
			Str("pe_source", peSource).
			Str("market_cap_source", capSource).
			Msg("Valuation resolved")
	}

	return &models.InstrumentRecord{
		Portfolio:   portfolio,
		Ticker:      inst.Ticker,
		Name:        name,
		Currency:    currency,
		LastPrice:   lastPrice,
		Quantity:    quantity,
		PerfEUR:     perfEUR,
		PerfLocal:   perfLocal,
		Indicators:  indicators,
		PERatio:     peRatio,
		MarketCap:   marketCap,
		DataStatus:  quality.Status,
		TrendState:  trendState,
		LastTradeAt: quality.LastTradeAt,
		GeoCoverage: inst.GeoWeights,
		RunID:       s.runID,
		UpdatedAt:   now,
	}
}

// saveRecord persists the merged record, falling back to a reduced
// field set when the full write fails — a forward-compatibility safety
// valve for a store schema that lags the record shape.
func (s *Service) saveRecord(ctx context.Context, record *models.InstrumentRecord) error {
	err := s.storage.WatchStore().SaveRecord(ctx, record)
	if err == nil {
		return nil
	}

	s.logger.Warn().Str("ticker", record.Ticker).Err(err).Msg("Full record save failed, retrying with reduced field set")
	if slimErr := s.storage.WatchStore().SaveRecordSlim(ctx, record); slimErr != nil {
		return fmt.Errorf("persist %s: %w", record.Ticker, slimErr)
	}
	return nil
}

// renderChart writes the EUR value chart as a best-effort artifact.
func (s *Service) renderChart(ticker string, aligned models.AlignedSeries) {
	png, err := RenderValueChart(ticker, aligned)
	if err != nil {
		s.logger.Debug().Str("ticker", ticker).Err(err).Msg("Chart render skipped")
		return
	}
	if err := s.storage.WriteRaw("charts", ticker+".png", png); err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Chart write failed")
	}
}
