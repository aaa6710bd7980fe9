package interfaces

import (
	"context"
	"errors"

	"github.com/HaliroESG/portfolio-project/internal/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// WatchStore persists instrument records, keyed by (portfolio, ticker).
type WatchStore interface {
	// GetRecord returns the full stored record, or ErrNotFound.
	GetRecord(ctx context.Context, portfolio, ticker string) (*models.InstrumentRecord, error)

	// GetPrior returns the slim field set the reconciliation merge
	// consults (P/E, market cap, data_status, trend_state), or
	// ErrNotFound on first run.
	GetPrior(ctx context.Context, portfolio, ticker string) (*models.PriorRecord, error)

	// SaveRecord upserts the merged record.
	SaveRecord(ctx context.Context, record *models.InstrumentRecord) error

	// SaveRecordSlim upserts only the core identity/price/status fields.
	// Used as the degraded retry when a full save fails (e.g. the store
	// schema is out of sync with a newer record shape).
	SaveRecordSlim(ctx context.Context, record *models.InstrumentRecord) error

	// ListRecords returns all stored records for a portfolio.
	ListRecords(ctx context.Context, portfolio string) ([]*models.InstrumentRecord, error)
}

// SnapshotStore persists portfolio snapshots, append-only by
// (portfolio, date).
type SnapshotStore interface {
	AppendSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error
	ListSnapshots(ctx context.Context, portfolio string) ([]*models.PortfolioSnapshot, error)
}

// RateStore persists CODE→EUR currency rates.
type RateStore interface {
	SaveRate(ctx context.Context, rate *models.CurrencyRate) error
	GetRates(ctx context.Context) (map[string]float64, error)
}

// MacroStore persists macro hub indicators.
type MacroStore interface {
	SaveIndicator(ctx context.Context, indicator *models.MacroIndicator) error
	ListIndicators(ctx context.Context) ([]*models.MacroIndicator, error)
}

// StorageManager provides access to all stores behind one backend.
type StorageManager interface {
	WatchStore() WatchStore
	SnapshotStore() SnapshotStore
	RateStore() RateStore
	MacroStore() MacroStore

	// WriteRaw stores a raw artifact (e.g. a rendered chart) under the
	// data path.
	WriteRaw(subdir, key string, data []byte) error

	Close() error
}
