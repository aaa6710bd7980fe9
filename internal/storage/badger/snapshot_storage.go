package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type snapshotStorage struct {
	store  *Store
	logger *common.Logger
}

func newSnapshotStorage(store *Store, logger *common.Logger) *snapshotStorage {
	return &snapshotStorage{store: store, logger: logger}
}

func snapshotKey(portfolio, date string) string {
	return portfolio + "|" + date
}

// AppendSnapshot inserts one row per (portfolio, date). A snapshot
// already recorded for the date is left untouched.
func (s *snapshotStorage) AppendSnapshot(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}

	key := snapshotKey(snapshot.Portfolio, snapshot.Date)
	err := s.store.db.Insert(key, snapshot)
	if err == badgerhold.ErrKeyExists {
		s.logger.Debug().Str("portfolio", snapshot.Portfolio).Str("date", snapshot.Date).Msg("Snapshot already recorded, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to append snapshot %s: %w", key, err)
	}
	s.logger.Debug().Str("portfolio", snapshot.Portfolio).Str("date", snapshot.Date).Msg("Snapshot appended")
	return nil
}

func (s *snapshotStorage) ListSnapshots(_ context.Context, portfolio string) ([]*models.PortfolioSnapshot, error) {
	var snapshots []models.PortfolioSnapshot
	if err := s.store.db.Find(&snapshots, badgerhold.Where("Portfolio").Eq(portfolio)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for %s: %w", portfolio, err)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date < snapshots[j].Date
	})
	mapped := make([]*models.PortfolioSnapshot, len(snapshots))
	for i := range snapshots {
		mapped[i] = &snapshots[i]
	}
	return mapped, nil
}
