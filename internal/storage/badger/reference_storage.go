package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
)

type rateStorage struct {
	store  *Store
	logger *common.Logger
}

func newRateStorage(store *Store, logger *common.Logger) *rateStorage {
	return &rateStorage{store: store, logger: logger}
}

func (s *rateStorage) SaveRate(_ context.Context, rate *models.CurrencyRate) error {
	rate.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(rate.Code, rate); err != nil {
		return fmt.Errorf("failed to save rate %s: %w", rate.Code, err)
	}
	s.logger.Debug().Str("code", rate.Code).Float64("rate", rate.RateToEUR).Msg("Currency rate saved")
	return nil
}

func (s *rateStorage) GetRates(_ context.Context) (map[string]float64, error) {
	var rates []models.CurrencyRate
	if err := s.store.db.Find(&rates, nil); err != nil {
		return nil, fmt.Errorf("failed to list currency rates: %w", err)
	}
	mapped := make(map[string]float64, len(rates))
	for _, r := range rates {
		mapped[r.Code] = r.RateToEUR
	}
	return mapped, nil
}

type macroStorage struct {
	store  *Store
	logger *common.Logger
}

func newMacroStorage(store *Store, logger *common.Logger) *macroStorage {
	return &macroStorage{store: store, logger: logger}
}

func (s *macroStorage) SaveIndicator(_ context.Context, indicator *models.MacroIndicator) error {
	indicator.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(indicator.ID, indicator); err != nil {
		return fmt.Errorf("failed to save macro indicator %s: %w", indicator.ID, err)
	}
	s.logger.Debug().Str("id", indicator.ID).Msg("Macro indicator saved")
	return nil
}

func (s *macroStorage) ListIndicators(_ context.Context) ([]*models.MacroIndicator, error) {
	var indicators []models.MacroIndicator
	if err := s.store.db.Find(&indicators, nil); err != nil {
		return nil, fmt.Errorf("failed to list macro indicators: %w", err)
	}
	mapped := make([]*models.MacroIndicator, len(indicators))
	for i := range indicators {
		mapped[i] = &indicators[i]
	}
	return mapped, nil
}
