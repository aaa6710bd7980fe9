package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// flexValue handles quoteSummary numeric fields, which arrive either as
// a plain number or wrapped as {"raw": n, "fmt": "..."} — and are
// frequently absent or empty ({}).
type flexValue struct {
	value *float64
}

func (f *flexValue) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.value = &num
		return nil
	}

	var wrapped struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		f.value = wrapped.Raw
		return nil
	}

	// Tolerate strings and other shapes as missing rather than failing
	// the whole payload.
	f.value = nil
	return nil
}

// quoteSummaryResponse is the v10 quoteSummary envelope, reduced to the
// modules and fields the valuation resolver and quality classifier
// consume.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE    flexValue `json:"trailingPE"`
				ForwardPE     flexValue `json:"forwardPE"`
				MarketCap     flexValue `json:"marketCap"`
				PreviousClose flexValue `json:"previousClose"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEPS              flexValue `json:"trailingEps"`
				ForwardEPS               flexValue `json:"forwardEps"`
				EnterpriseValue          flexValue `json:"enterpriseValue"`
				SharesOutstanding        flexValue `json:"sharesOutstanding"`
				ImpliedSharesOutstanding flexValue `json:"impliedSharesOutstanding"`
				FloatShares              flexValue `json:"floatShares"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				CurrentPrice flexValue `json:"currentPrice"`
			} `json:"financialData"`
			Price struct {
				RegularMarketPrice flexValue `json:"regularMarketPrice"`
				RegularMarketTime  flexValue `json:"regularMarketTime"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetQuoteMetadata retrieves the sparse valuation/quote metadata for a
// symbol. Fields the provider does not populate are nil.
func (c *Client) GetQuoteMetadata(ctx context.Context, symbol string) (*models.QuoteMetadata, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail,defaultKeyStatistics,financialData,price")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(symbol))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, &APIError{
			Message:  resp.QuoteSummary.Error.Description,
			Endpoint: path,
		}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		// No metadata is a valid sparse response.
		return &models.QuoteMetadata{Ticker: symbol}, nil
	}

	r := resp.QuoteSummary.Result[0]

	meta := &models.QuoteMetadata{
		Ticker:                   symbol,
		TrailingPE:               r.SummaryDetail.TrailingPE.value,
		ForwardPE:                r.SummaryDetail.ForwardPE.value,
		TrailingEPS:              r.DefaultKeyStatistics.TrailingEPS.value,
		ForwardEPS:               r.DefaultKeyStatistics.ForwardEPS.value,
		MarketCap:                r.SummaryDetail.MarketCap.value,
		EnterpriseValue:          r.DefaultKeyStatistics.EnterpriseValue.value,
		SharesOutstanding:        r.DefaultKeyStatistics.SharesOutstanding.value,
		ImpliedSharesOutstanding: r.DefaultKeyStatistics.ImpliedSharesOutstanding.value,
		FloatShares:              r.DefaultKeyStatistics.FloatShares.value,
		RegularMarketPrice:       r.Price.RegularMarketPrice.value,
		CurrentPrice:             r.FinancialData.CurrentPrice.value,
		PreviousClose:            r.SummaryDetail.PreviousClose.value,
	}

	if ts := r.Price.RegularMarketTime.value; ts != nil && *ts > 0 {
		t := time.Unix(int64(*ts), 0).UTC()
		meta.RegularMarketTime = &t
	}

	return meta, nil
}
