package models

import (
	"time"
)

// DataStatus classifies the quality of an instrument's latest quote.
type DataStatus string

const (
	DataStatusOK            DataStatus = "OK"
	DataStatusStale         DataStatus = "STALE"
	DataStatusLowConfidence DataStatus = "LOW_CONFIDENCE"
)

// TrendState is the categorical technical classification of an instrument.
type TrendState string

const (
	TrendUnknown TrendState = "UNKNOWN"
	TrendBullish TrendState = "BULLISH"
	TrendBearish TrendState = "BEARISH"
	TrendNeutral TrendState = "NEUTRAL"
)

// Performance holds the return figures for one currency family, as
// fractions (0.01 = +1%). Nil means the metric is undefined for this
// run (insufficient history or no pre-cutoff observation for YTD).
type Performance struct {
	Day   *float64 `json:"day,omitempty"`
	Week  *float64 `json:"week,omitempty"`
	Month *float64 `json:"month,omitempty"`
	YTD   *float64 `json:"ytd,omitempty"`
}

// Indicators holds the technical indicator outputs for one run.
// Nil fields are undefined (insufficient history), never zero-valued.
type Indicators struct {
	MA200 *float64 `json:"ma200,omitempty"`
	// MA200Status is "above" or "below".
	MA200Status string `json:"ma200_status,omitempty"`
	// TrendSlope is price change per trading day.
	TrendSlope *float64 `json:"trend_slope,omitempty"`
	// Volatility30 is annualized and expressed in percent.
	Volatility30  *float64 `json:"volatility_30d,omitempty"`
	MACDLine      *float64 `json:"macd_line,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`
	RSI14         *float64 `json:"rsi_14,omitempty"`
	// Momentum20 is in percent.
	Momentum20 *float64 `json:"momentum_20d,omitempty"`
}

// InstrumentRecord is the enrichment engine's output unit for one
// instrument and one run. It is compared against and merged with the
// previously persisted record before being written back.
type InstrumentRecord struct {
	Portfolio    string             `json:"portfolio"`
	Ticker       string             `json:"ticker"`
	Name         string             `json:"name"`
	Currency     string             `json:"currency"`
	LastPrice    float64            `json:"last_price"`
	Quantity     float64            `json:"quantity"`
	PerfEUR      Performance        `json:"perf_eur"`
	PerfLocal    Performance        `json:"perf_local"`
	Indicators   Indicators         `json:"indicators"`
	PERatio      *float64           `json:"pe_ratio,omitempty"`
	MarketCap    *float64           `json:"market_cap,omitempty"`
	DataStatus   DataStatus         `json:"data_status"`
	TrendState   TrendState         `json:"trend_state"`
	TrendChanged bool               `json:"trend_changed"`
	LastTradeAt  time.Time          `json:"last_trade_at"`
	GeoCoverage  map[string]float64 `json:"geo_coverage,omitempty"`
	RunID        string             `json:"run_id,omitempty"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// PriorRecord is the slim selective read of a previously persisted
// record used by the reconciliation merge: only the fields the merge
// rules consult.
type PriorRecord struct {
	PERatio    *float64   `json:"pe_ratio,omitempty"`
	MarketCap  *float64   `json:"market_cap,omitempty"`
	DataStatus DataStatus `json:"data_status"`
	TrendState TrendState `json:"trend_state"`
}

// PortfolioSnapshot is the portfolio-level value/coverage aggregate for
// one run. Snapshots are append-only: one row per (portfolio, date),
// never mutated.
type PortfolioSnapshot struct {
	Portfolio       string    `json:"portfolio"`
	Date            string    `json:"date"` // YYYY-MM-DD
	TotalValueEUR   float64   `json:"total_value_eur"`
	CoveredValueEUR float64   `json:"covered_value_eur"`
	CoveragePct     *float64  `json:"coverage_pct,omitempty"` // nil when total is 0
	InstrumentCount int       `json:"instrument_count"`
	RunID           string    `json:"run_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CurrencyRate is a CODE→EUR conversion rate row.
type CurrencyRate struct {
	Code      string    `json:"code"`
	Symbol    string    `json:"symbol"`
	RateToEUR float64   `json:"rate_to_eur"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MacroIndicator is one macro hub row (VIX, rates, gold, ...).
type MacroIndicator struct {
	ID        string    `json:"id"` // provider ticker, e.g. "^VIX"
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Value     float64   `json:"value"`
	ChangePct *float64  `json:"change_pct,omitempty"` // day-over-day fraction
	UpdatedAt time.Time `json:"updated_at"`
}
