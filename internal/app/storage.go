package app

import (
	"context"
	"fmt"

	config "github.com/mwantia/dungeonrun/internal/config/tracker"
	"github.com/mwantia/dungeonrun/pkg/db/store"
	"github.com/mwantia/dungeonrun/pkg/log"
)

// StorageService owns the configured key-value store. It is connected,
// checked and migrated when the container first resolves it and closed
// during container cleanup.
type StorageService struct {
	cfg   config.StorageTrackerConfig
	log   log.LoggerService
	store store.KeyValueStore
}

func NewStorageService(cfg config.StorageTrackerConfig, logger log.LoggerService) *StorageService {
	return &StorageService{
		cfg: cfg,
		log: logger,
	}
}

func (ss *StorageService) newStore() (store.KeyValueStore, error) {
	switch ss.cfg.Type {
	case config.StorageTypeMemory:
		ss.log.Warn("Using in-memory storage, nothing will be kept after exit")
		return store.NewMemoryStore(), nil
	case config.StorageTypeSQLite:
		return store.NewSQLiteStore(store.SQLiteConfig{
			Path: ss.cfg.SQLite.Path,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type '%s'", ss.cfg.Type)
	}
}

func (ss *StorageService) Init(ctx context.Context) error {
	s, err := ss.newStore()
	if err != nil {
		return err
	}

	if err := s.Connect(ctx); err != nil {
		s.Close()
		return fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := s.Health(ctx); err != nil {
		s.Close()
		return fmt.Errorf("storage is not healthy: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return fmt.Errorf("failed to migrate storage: %w", err)
	}

	ss.log.Debug("Opened '%s' storage", ss.cfg.Type)
	ss.store = s
	return nil
}

func (ss *StorageService) Cleanup(ctx context.Context) error {
	if ss.store == nil {
		return nil
	}

	err := ss.store.Close()
	ss.store = nil
	if err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	ss.log.Debug("Closed '%s' storage", ss.cfg.Type)
	return nil
}

// Store returns the open store, or nil once the service has been cleaned up.
func (ss *StorageService) Store() store.KeyValueStore {
	return ss.store
}
