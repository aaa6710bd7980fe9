package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// WatchStore persists instrument records in the watch table, one row
// per (portfolio, ticker).
type WatchStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewWatchStore(db *surrealdb.DB, logger *common.Logger) *WatchStore {
	return &WatchStore{db: db, logger: logger}
}

func recordID(portfolio, ticker string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("watch", portfolio+"|"+ticker)
}

func (s *WatchStore) GetRecord(ctx context.Context, portfolio, ticker string) (*models.InstrumentRecord, error) {
	record, err := surrealdb.Select[models.InstrumentRecord](ctx, s.db, recordID(portfolio, ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select record %s/%s: %w", portfolio, ticker, err)
	}
	if record == nil {
		return nil, interfaces.ErrNotFound
	}
	return record, nil
}

// GetPrior reads only the fields the reconciliation merge consults, so
// prior-state reads stay cheap and insulated from record shape changes.
func (s *WatchStore) GetPrior(ctx context.Context, portfolio, ticker string) (*models.PriorRecord, error) {
	sql := "SELECT pe_ratio, market_cap, data_status, trend_state FROM $rid"
	vars := map[string]any{"rid": recordID(portfolio, ticker)}

	results, err := surrealdb.Query[[]models.PriorRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to select prior %s/%s: %w", portfolio, ticker, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

func (s *WatchStore) SaveRecord(ctx context.Context, record *models.InstrumentRecord) error {
	record.UpdatedAt = time.Now()

	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": recordID(record.Portfolio, record.Ticker), "data": record}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.InstrumentRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save record after retries: %w", lastErr)
}

// SaveRecordSlim writes only the core identity/price/status fields,
// used as the degraded retry when the full upsert fails.
func (s *WatchStore) SaveRecordSlim(ctx context.Context, record *models.InstrumentRecord) error {
	slim := map[string]any{
		"portfolio":     record.Portfolio,
		"ticker":        record.Ticker,
		"name":          record.Name,
		"currency":      record.Currency,
		"last_price":    record.LastPrice,
		"quantity":      record.Quantity,
		"data_status":   record.DataStatus,
		"trend_state":   record.TrendState,
		"last_trade_at": record.LastTradeAt,
		"run_id":        record.RunID,
		"updated_at":    time.Now(),
	}

	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": recordID(record.Portfolio, record.Ticker), "data": slim}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.InstrumentRecord](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Warn().Str("ticker", record.Ticker).Msg("Record saved in slim form")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save slim record after retries: %w", lastErr)
}

func (s *WatchStore) ListRecords(ctx context.Context, portfolio string) ([]*models.InstrumentRecord, error) {
	sql := "SELECT * FROM watch WHERE portfolio = $portfolio"
	vars := map[string]any{"portfolio": portfolio}

	results, err := surrealdb.Query[[]models.InstrumentRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for %s: %w", portfolio, err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.InstrumentRecord
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
