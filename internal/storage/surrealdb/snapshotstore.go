package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SnapshotStore persists portfolio snapshots, append-only by
// (portfolio, date).
type SnapshotStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSnapshotStore(db *surrealdb.DB, logger *common.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

func snapshotID(portfolio, date string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("snapshots", portfolio+"|"+date)
}

// AppendSnapshot creates one row per (portfolio, date). CREATE (not
// UPSERT) keeps the history append-only; a snapshot already recorded
// for the date is left untouched.
func (s *SnapshotStore) AppendSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}

	sql := "CREATE $rid CONTENT $data"
	vars := map[string]any{"rid": snapshotID(snapshot.Portfolio, snapshot.Date), "data": snapshot}

	_, err := surrealdb.Query[[]models.PortfolioSnapshot](ctx, s.db, sql, vars)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			s.logger.Debug().Str("portfolio", snapshot.Portfolio).Str("date", snapshot.Date).Msg("Snapshot already recorded, skipping")
			return nil
		}
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	s.logger.Debug().Str("portfolio", snapshot.Portfolio).Str("date", snapshot.Date).Msg("Snapshot appended")
	return nil
}

func (s *SnapshotStore) ListSnapshots(ctx context.Context, portfolio string) ([]*models.PortfolioSnapshot, error) {
	sql := "SELECT * FROM snapshots WHERE portfolio = $portfolio ORDER BY date"
	vars := map[string]any{"portfolio": portfolio}

	results, err := surrealdb.Query[[]models.PortfolioSnapshot](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for %s: %w", portfolio, err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.PortfolioSnapshot
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
