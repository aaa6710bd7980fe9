package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(
		WithBaseURL(server.URL),
		WithRateLimit(1000),
	)
	return client, server
}

func chartBody(timestamps []int64, closes []string) string {
	ts := ""
	for i, t := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", t)
	}
	cl := ""
	for i, c := range closes {
		if i > 0 {
			cl += ","
		}
		cl += c
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`, ts, cl)
}

func TestGetDailyBars(t *testing.T) {
	day := int64(86400)
	base := time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC).Unix()

	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/ASML.AS" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" || r.URL.Query().Get("range") != "1y" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, chartBody(
			[]int64{base, base + day, base + 2*day, base + 3*day},
			[]string{"700.5", "null", "0", "712.25"},
		))
	})
	defer server.Close()

	bars, err := client.GetDailyBars(context.Background(), "ASML.AS", "1y")
	if err != nil {
		t.Fatalf("GetDailyBars: %v", err)
	}

	// Null and zero closes are dropped.
	if len(bars) != 2 {
		t.Fatalf("len = %d, want 2", len(bars))
	}
	if bars[0].Close != 700.5 || bars[1].Close != 712.25 {
		t.Errorf("closes = %v/%v, want 700.5/712.25", bars[0].Close, bars[1].Close)
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Error("bars must be ascending by date")
	}
	if bars[0].Date.Hour() != 0 {
		t.Errorf("dates must be truncated to midnight UTC, got %v", bars[0].Date)
	}
}

func TestGetDailyBars_ProviderError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})
	defer server.Close()

	_, err := client.GetDailyBars(context.Background(), "GONE.PA", "1y")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "No data found, symbol may be delisted" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestGetDailyBars_HTTPError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "rate limited")
	})
	defer server.Close()

	_, err := client.GetDailyBars(context.Background(), "ASML.AS", "1y")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
}

func TestGetDailyBars_EmptyResult(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	})
	defer server.Close()

	bars, err := client.GetDailyBars(context.Background(), "NEW.PA", "1y")
	if err != nil {
		t.Fatalf("empty result must not be an error, got %v", err)
	}
	if bars != nil {
		t.Errorf("bars = %v, want nil", bars)
	}
}

func TestGetQuoteMetadata(t *testing.T) {
	marketTime := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC).Unix()

	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/ASML.AS" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprintf(w, `{"quoteSummary":{"result":[{
			"summaryDetail":{"trailingPE":{"raw":31.2,"fmt":"31.20"},"marketCap":{"raw":3.4e11},"previousClose":698.1},
			"defaultKeyStatistics":{"trailingEps":{"raw":22.5},"floatShares":{},"sharesOutstanding":"N/A"},
			"financialData":{"currentPrice":{"raw":702.0}},
			"price":{"regularMarketPrice":702.5,"regularMarketTime":%d}
		}],"error":null}}`, marketTime)
	})
	defer server.Close()

	meta, err := client.GetQuoteMetadata(context.Background(), "ASML.AS")
	if err != nil {
		t.Fatalf("GetQuoteMetadata: %v", err)
	}

	// Wrapped raw values.
	if meta.TrailingPE == nil || *meta.TrailingPE != 31.2 {
		t.Errorf("TrailingPE = %v, want 31.2", meta.TrailingPE)
	}
	if meta.MarketCap == nil || *meta.MarketCap != 3.4e11 {
		t.Errorf("MarketCap = %v, want 3.4e11", meta.MarketCap)
	}
	// Plain numbers.
	if meta.PreviousClose == nil || *meta.PreviousClose != 698.1 {
		t.Errorf("PreviousClose = %v, want 698.1", meta.PreviousClose)
	}
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice != 702.5 {
		t.Errorf("RegularMarketPrice = %v, want 702.5", meta.RegularMarketPrice)
	}
	// Empty object and string shapes degrade to nil.
	if meta.FloatShares != nil {
		t.Errorf("FloatShares = %v, want nil for {}", meta.FloatShares)
	}
	if meta.SharesOutstanding != nil {
		t.Errorf("SharesOutstanding = %v, want nil for a string", meta.SharesOutstanding)
	}
	// Absent fields are nil.
	if meta.ForwardPE != nil {
		t.Errorf("ForwardPE = %v, want nil", meta.ForwardPE)
	}
	// Unix timestamp decoded.
	if meta.RegularMarketTime == nil || meta.RegularMarketTime.Unix() != marketTime {
		t.Errorf("RegularMarketTime = %v", meta.RegularMarketTime)
	}
}

func TestGetQuoteMetadata_EmptyResult(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[],"error":null}}`)
	})
	defer server.Close()

	meta, err := client.GetQuoteMetadata(context.Background(), "SPARSE.PA")
	if err != nil {
		t.Fatalf("empty result must not be an error, got %v", err)
	}
	if meta == nil || meta.Ticker != "SPARSE.PA" {
		t.Fatalf("meta = %+v, want sparse metadata with ticker", meta)
	}
	if meta.TrailingPE != nil || meta.MarketCap != nil {
		t.Error("sparse metadata should have nil fields")
	}
}

func TestGetQuoteMetadata_ProviderError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`)
	})
	defer server.Close()

	_, err := client.GetQuoteMetadata(context.Background(), "ASML.AS")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
}
