package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RateStore persists CODE→EUR currency rates.
type RateStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewRateStore(db *surrealdb.DB, logger *common.Logger) *RateStore {
	return &RateStore{db: db, logger: logger}
}

func (s *RateStore) SaveRate(ctx context.Context, rate *models.CurrencyRate) error {
	rate.UpdatedAt = time.Now()

	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("currency_rates", rate.Code), "data": rate}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.CurrencyRate](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save rate after retries: %w", lastErr)
}

func (s *RateStore) GetRates(ctx context.Context) (map[string]float64, error) {
	sql := "SELECT * FROM currency_rates"

	results, err := surrealdb.Query[[]models.CurrencyRate](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list currency rates: %w", err)
	}

	mapped := make(map[string]float64)
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			mapped[r.Code] = r.RateToEUR
		}
	}
	return mapped, nil
}

// MacroStore persists macro hub indicators.
type MacroStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewMacroStore(db *surrealdb.DB, logger *common.Logger) *MacroStore {
	return &MacroStore{db: db, logger: logger}
}

func (s *MacroStore) SaveIndicator(ctx context.Context, indicator *models.MacroIndicator) error {
	indicator.UpdatedAt = time.Now()

	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("macro_indicators", indicator.ID), "data": indicator}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.MacroIndicator](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save macro indicator after retries: %w", lastErr)
}

func (s *MacroStore) ListIndicators(ctx context.Context) ([]*models.MacroIndicator, error) {
	sql := "SELECT * FROM macro_indicators"

	results, err := surrealdb.Query[[]models.MacroIndicator](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list macro indicators: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.MacroIndicator
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
