// Package storage selects the persistence backend from configuration.
package storage

import (
	"fmt"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
	"github.com/HaliroESG/portfolio-project/internal/storage/badger"
	"github.com/HaliroESG/portfolio-project/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendBadger  = "badger"
	BackendSurreal = "surrealdb"
)

// NewManager creates a storage manager based on the configuration.
// Supported backends: "badger" (default, local) and "surrealdb".
func NewManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendBadger
	}

	switch backend {
	case BackendBadger:
		return badger.NewManager(logger, config)

	case BackendSurreal:
		return surrealdb.NewManager(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb)", backend)
	}
}
