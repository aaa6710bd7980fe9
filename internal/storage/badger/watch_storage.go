package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type watchStorage struct {
	store  *Store
	logger *common.Logger
}

func newWatchStorage(store *Store, logger *common.Logger) *watchStorage {
	return &watchStorage{store: store, logger: logger}
}

func recordKey(portfolio, ticker string) string {
	return portfolio + "|" + ticker
}

func (s *watchStorage) GetRecord(_ context.Context, portfolio, ticker string) (*models.InstrumentRecord, error) {
	var record models.InstrumentRecord
	err := s.store.db.Get(recordKey(portfolio, ticker), &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record %s/%s: %w", portfolio, ticker, err)
	}
	return &record, nil
}

func (s *watchStorage) GetPrior(ctx context.Context, portfolio, ticker string) (*models.PriorRecord, error) {
	record, err := s.GetRecord(ctx, portfolio, ticker)
	if err != nil {
		return nil, err
	}
	return &models.PriorRecord{
		PERatio:    record.PERatio,
		MarketCap:  record.MarketCap,
		DataStatus: record.DataStatus,
		TrendState: record.TrendState,
	}, nil
}

func (s *watchStorage) SaveRecord(_ context.Context, record *models.InstrumentRecord) error {
	record.UpdatedAt = time.Now()

	key := recordKey(record.Portfolio, record.Ticker)
	if err := s.store.db.Upsert(key, record); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	s.logger.Debug().Str("ticker", record.Ticker).Str("portfolio", record.Portfolio).Msg("Record saved")
	return nil
}

func (s *watchStorage) SaveRecordSlim(_ context.Context, record *models.InstrumentRecord) error {
	slim := models.InstrumentRecord{
		Portfolio:   record.Portfolio,
		Ticker:      record.Ticker,
		Name:        record.Name,
		Currency:    record.Currency,
		LastPrice:   record.LastPrice,
		Quantity:    record.Quantity,
		DataStatus:  record.DataStatus,
		TrendState:  record.TrendState,
		LastTradeAt: record.LastTradeAt,
		RunID:       record.RunID,
		UpdatedAt:   time.Now(),
	}

	key := recordKey(record.Portfolio, record.Ticker)
	if err := s.store.db.Upsert(key, &slim); err != nil {
		return fmt.Errorf("failed to save slim record %s: %w", key, err)
	}
	s.logger.Warn().Str("ticker", record.Ticker).Msg("Record saved in slim form")
	return nil
}

func (s *watchStorage) ListRecords(_ context.Context, portfolio string) ([]*models.InstrumentRecord, error) {
	var records []models.InstrumentRecord
	if err := s.store.db.Find(&records, badgerhold.Where("Portfolio").Eq(portfolio)); err != nil {
		return nil, fmt.Errorf("failed to list records for %s: %w", portfolio, err)
	}
	mapped := make([]*models.InstrumentRecord, len(records))
	for i := range records {
		mapped[i] = &records[i]
	}
	return mapped, nil
}
