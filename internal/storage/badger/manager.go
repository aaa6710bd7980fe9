package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HaliroESG/portfolio-project/internal/common"
	"github.com/HaliroESG/portfolio-project/internal/interfaces"
)

// Manager implements interfaces.StorageManager on BadgerHold.
type Manager struct {
	store    *Store
	logger   *common.Logger
	dataPath string

	watchStore    *watchStorage
	snapshotStore *snapshotStorage
	rateStore     *rateStorage
	macroStore    *macroStorage
}

// NewManager creates a StorageManager backed by a local BadgerHold
// database. Raw artifacts (charts) are written under dataPath.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}

	dataPath := config.Storage.DataPath
	if dataPath == "" {
		dataPath = "data/bridge"
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create data path: %w", err)
	}

	m := &Manager{
		store:    store,
		logger:   logger,
		dataPath: dataPath,
	}

	m.watchStore = newWatchStorage(store, logger)
	m.snapshotStore = newSnapshotStorage(store, logger)
	m.rateStore = newRateStorage(store, logger)
	m.macroStore = newMacroStorage(store, logger)

	logger.Info().
		Str("path", config.Storage.Path).
		Str("data_path", dataPath).
		Msg("Badger storage manager initialized")

	return m, nil
}

func (m *Manager) WatchStore() interfaces.WatchStore {
	return m.watchStore
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshotStore
}

func (m *Manager) RateStore() interfaces.RateStore {
	return m.rateStore
}

func (m *Manager) MacroStore() interfaces.MacroStore {
	return m.macroStore
}

// WriteRaw stores a raw artifact under dataPath/subdir/key.
func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(m.dataPath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func (m *Manager) Close() error {
	return m.store.Close()
}
