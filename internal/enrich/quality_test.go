package enrich

import (
	"testing"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
)

var qualityCfg = common.EngineConfig{
	StaleAfterDays:   7,
	MaxStaleAgeYears: 10,
	MinPlausibleYear: 2000,
}

func TestClassifyQuality(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		price        float64
		lastTrade    time.Time
		wantStatus   models.DataStatus
		wantRepaired bool
	}{
		{
			name:       "fresh quote",
			price:      42.5,
			lastTrade:  asOf.Add(-24 * time.Hour),
			wantStatus: models.DataStatusOK,
		},
		{
			name:       "just inside the stale window",
			price:      42.5,
			lastTrade:  asOf.Add(-6 * 24 * time.Hour),
			wantStatus: models.DataStatusOK,
		},
		{
			name:       "just past the stale window",
			price:      42.5,
			lastTrade:  asOf.Add(-8 * 24 * time.Hour),
			wantStatus: models.DataStatusStale,
		},
		{
			name:       "years old but within max age",
			price:      42.5,
			lastTrade:  asOf.AddDate(-2, 0, 0),
			wantStatus: models.DataStatusStale,
		},
		{
			name:         "older than max age is repaired",
			price:        42.5,
			lastTrade:    asOf.AddDate(-11, 0, 0),
			wantStatus:   models.DataStatusOK,
			wantRepaired: true,
		},
		{
			name:         "zero timestamp is repaired",
			price:        42.5,
			lastTrade:    time.Time{},
			wantStatus:   models.DataStatusOK,
			wantRepaired: true,
		},
		{
			name:         "epoch-era timestamp is repaired",
			price:        42.5,
			lastTrade:    time.Date(1970, 1, 1, 0, 0, 1, 0, time.UTC),
			wantStatus:   models.DataStatusOK,
			wantRepaired: true,
		},
		{
			name:       "zero price dominates even with fresh timestamp",
			price:      0,
			lastTrade:  asOf.Add(-time.Hour),
			wantStatus: models.DataStatusLowConfidence,
		},
		{
			name:       "zero price with broken timestamp stays low confidence",
			price:      0,
			lastTrade:  time.Time{},
			wantStatus: models.DataStatusLowConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyQuality(tt.price, tt.lastTrade, asOf, qualityCfg)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Repaired != tt.wantRepaired {
				t.Errorf("Repaired = %v, want %v", got.Repaired, tt.wantRepaired)
			}
			if tt.wantRepaired && !got.LastTradeAt.Equal(asOf) {
				t.Errorf("repaired LastTradeAt = %v, want asOf", got.LastTradeAt)
			}
			if !tt.wantRepaired && tt.wantStatus != models.DataStatusLowConfidence && !got.LastTradeAt.Equal(tt.lastTrade) {
				t.Errorf("LastTradeAt = %v, want original %v", got.LastTradeAt, tt.lastTrade)
			}
		})
	}
}

func TestClassifyQuality_ConfigDefaults(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	// A zero-valued config falls back to the built-in thresholds.
	got := ClassifyQuality(10, asOf.Add(-8*24*time.Hour), asOf, common.EngineConfig{})
	if got.Status != models.DataStatusStale {
		t.Errorf("Status = %v, want STALE under default thresholds", got.Status)
	}
}
