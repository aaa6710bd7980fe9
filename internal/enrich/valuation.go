package enrich

import (
	"github.com/HaliroESG/portfolio-project/internal/models"
)

// The valuation resolver walks an ordered list of candidates and
// accepts the first one whose predicate holds. Each step guards
// independently against missing and non-positive values, so a sparse or
// partially garbage metadata payload degrades to the next source
// instead of failing.

// candidate is one step of a fallback chain.
type candidate struct {
	name  string
	value func() *float64
}

// resolveChain returns the first candidate value that is present and
// strictly positive.
func resolveChain(chain []candidate) (*float64, string) {
	for _, c := range chain {
		if v := c.value(); v != nil && *v > 0 {
			return models.Float(*v), c.name
		}
	}
	return nil, ""
}

// ResolvePE resolves the P/E ratio: trailing P/E → forward P/E →
// price/trailing-EPS → price/forward-EPS → undefined. The second
// return names the winning chain step for audit logging, empty when
// nothing resolved.
func ResolvePE(meta *models.QuoteMetadata) (*float64, string) {
	if meta == nil {
		return nil, ""
	}

	price := resolvePrice(meta)

	return resolveChain([]candidate{
		{"trailing_pe", func() *float64 { return meta.TrailingPE }},
		{"forward_pe", func() *float64 { return meta.ForwardPE }},
		{"price_over_trailing_eps", func() *float64 { return ratio(price, meta.TrailingEPS) }},
		{"price_over_forward_eps", func() *float64 { return ratio(price, meta.ForwardEPS) }},
	})
}

// ResolveMarketCap resolves market capitalization: direct market cap →
// enterprise value → price × shares outstanding → undefined. The
// second return names the winning chain step.
func ResolveMarketCap(meta *models.QuoteMetadata) (*float64, string) {
	if meta == nil {
		return nil, ""
	}

	price := resolvePrice(meta)
	shares := resolveShares(meta)

	return resolveChain([]candidate{
		{"market_cap", func() *float64 { return meta.MarketCap }},
		{"enterprise_value", func() *float64 { return meta.EnterpriseValue }},
		{"price_times_shares", func() *float64 { return product(price, shares) }},
	})
}

// resolvePrice picks the first positive price field: regular market
// price, current price, previous close.
func resolvePrice(meta *models.QuoteMetadata) *float64 {
	price, _ := resolveChain([]candidate{
		{"regular_market_price", func() *float64 { return meta.RegularMarketPrice }},
		{"current_price", func() *float64 { return meta.CurrentPrice }},
		{"previous_close", func() *float64 { return meta.PreviousClose }},
	})
	return price
}

// resolveShares picks the first positive share count: outstanding,
// implied outstanding, float.
func resolveShares(meta *models.QuoteMetadata) *float64 {
	shares, _ := resolveChain([]candidate{
		{"shares_outstanding", func() *float64 { return meta.SharesOutstanding }},
		{"implied_shares_outstanding", func() *float64 { return meta.ImpliedSharesOutstanding }},
		{"float_shares", func() *float64 { return meta.FloatShares }},
	})
	return shares
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 || *num <= 0 {
		return nil
	}
	return models.Float(*num / *den)
}

func product(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return models.Float(*a * *b)
}
