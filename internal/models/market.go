// Package models defines data structures for the market-data bridge
package models

import (
	"time"
)

// Bar is a single trading day's closing observation.
type Bar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of daily bars, ascending by date,
// with no duplicate dates. Immutable once fetched.
type PriceSeries []Bar

// Last returns the most recent bar. ok is false for an empty series.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Closes returns the closing prices in ascending date order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// AlignedPoint is one row of an aligned series: the asset close, the FX
// rate carried forward onto the asset's date, and the derived EUR value.
// FX is 0 when no FX observation exists on or before the date (leading
// gap only); ValueEUR is 0 for those rows.
type AlignedPoint struct {
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	FX       float64   `json:"fx"`
	ValueEUR float64   `json:"value_eur"`
}

// AlignedSeries is a price series and an FX series reindexed onto the
// price series' calendar. Its length always equals the input price
// series' length.
type AlignedSeries []AlignedPoint

// Prices returns the local-currency closes in ascending date order.
func (s AlignedSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// ValuesEUR returns the EUR value column in ascending date order.
func (s AlignedSeries) ValuesEUR() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.ValueEUR
	}
	return out
}

// QuoteMetadata is the sparse, possibly partially-populated metadata
// mapping returned by the market data provider. Nil means the provider
// did not supply the field.
type QuoteMetadata struct {
	Ticker                   string     `json:"ticker"`
	TrailingPE               *float64   `json:"trailing_pe,omitempty"`
	ForwardPE                *float64   `json:"forward_pe,omitempty"`
	TrailingEPS              *float64   `json:"trailing_eps,omitempty"`
	ForwardEPS               *float64   `json:"forward_eps,omitempty"`
	MarketCap                *float64   `json:"market_cap,omitempty"`
	EnterpriseValue          *float64   `json:"enterprise_value,omitempty"`
	SharesOutstanding        *float64   `json:"shares_outstanding,omitempty"`
	ImpliedSharesOutstanding *float64   `json:"implied_shares_outstanding,omitempty"`
	FloatShares              *float64   `json:"float_shares,omitempty"`
	RegularMarketPrice       *float64   `json:"regular_market_price,omitempty"`
	CurrentPrice             *float64   `json:"current_price,omitempty"`
	PreviousClose            *float64   `json:"previous_close,omitempty"`
	RegularMarketTime        *time.Time `json:"regular_market_time,omitempty"`
}

// Float returns a pointer to v, for populating nullable metric fields.
func Float(v float64) *float64 {
	return &v
}
