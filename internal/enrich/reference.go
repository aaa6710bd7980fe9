package enrich

import (
	"context"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// Reference data refreshed once per run before the instrument loop: the
// CODE→EUR rate table feeding the coverage aggregator, and the macro
// hub indicator set. Failures are isolated per symbol; a missed rate
// degrades to the 1:1 default downstream.

// trackedCurrency is one row of the currency sync set.
type trackedCurrency struct {
	code   string
	symbol string
}

var trackedCurrencies = []trackedCurrency{
	{"USD", "$"},
	{"CHF", "CHF"},
	{"GBP", "£"},
	{"JPY", "¥"},
}

// macroEntry is one row of the macro hub set.
type macroEntry struct {
	id       string
	name     string
	category string
}

var macroEntries = []macroEntry{
	{"^VIX", "VIX Index", "VOLATILITY"},
	{"^MOVE", "MOVE Index", "VOLATILITY"},
	{"^TNX", "US 10Y Yield", "RATES"},
	{"DX-Y.NYB", "DXY Dollar Index", "FOREX"},
	{"GC=F", "Gold", "COMMODITY"},
	{"EURUSD=X", "EUR/USD", "FOREX"},
	{"BTC-USD", "Bitcoin", "CRYPTO"},
}

// referenceRange gives a few days of slack so the run still finds a
// close after weekends and holidays.
const referenceRange = "5d"

// SyncCurrencies refreshes the CODE→EUR rate table and returns the
// rates fetched this run. A failed pair is logged and skipped; the
// returned map only carries what succeeded.
func (s *Service) SyncCurrencies(ctx context.Context) (map[string]float64, error) {
	now := s.now()
	rates := make(map[string]float64, len(trackedCurrencies))

	for _, cur := range trackedCurrencies {
		bars, err := s.market.GetDailyBars(ctx, fxSymbol(cur.code), referenceRange)
		if err != nil {
			s.logger.Warn().Str("currency", cur.code).Err(err).Msg("Currency rate fetch failed")
			continue
		}
		last, ok := bars.Last()
		if !ok || last.Close == 0 {
			s.logger.Warn().Str("currency", cur.code).Msg("Currency rate fetch returned no data")
			continue
		}

		rate := &models.CurrencyRate{
			Code:      cur.code,
			Symbol:    cur.symbol,
			RateToEUR: last.Close,
			UpdatedAt: now,
		}
		if err := s.storage.RateStore().SaveRate(ctx, rate); err != nil {
			s.logger.Warn().Str("currency", cur.code).Err(err).Msg("Currency rate save failed")
			continue
		}

		rates[cur.code] = last.Close
		s.logger.Debug().Str("currency", cur.code).Float64("rate", last.Close).Msg("Currency rate updated")
	}

	return rates, nil
}

// SyncMacro refreshes the macro hub: last value and day-over-day change
// for each tracked indicator. Indicators with fewer than two
// observations are skipped.
func (s *Service) SyncMacro(ctx context.Context) error {
	now := s.now()

	for _, entry := range macroEntries {
		bars, err := s.market.GetDailyBars(ctx, entry.id, referenceRange)
		if err != nil {
			s.logger.Warn().Str("indicator", entry.id).Err(err).Msg("Macro fetch failed")
			continue
		}
		if len(bars) < 2 {
			s.logger.Warn().Str("indicator", entry.id).Int("bars", len(bars)).Msg("Macro fetch returned insufficient data")
			continue
		}

		current := bars[len(bars)-1].Close
		prev := bars[len(bars)-2].Close

		indicator := &models.MacroIndicator{
			ID:        entry.id,
			Name:      entry.name,
			Category:  entry.category,
			Value:     current,
			UpdatedAt: now,
		}
		if prev != 0 {
			indicator.ChangePct = models.Float(current/prev - 1)
		}

		if err := s.storage.MacroStore().SaveIndicator(ctx, indicator); err != nil {
			s.logger.Warn().Str("indicator", entry.id).Err(err).Msg("Macro indicator save failed")
			continue
		}

		s.logger.Debug().Str("indicator", entry.id).Float64("value", current).Msg("Macro indicator updated")
	}

	return nil
}
