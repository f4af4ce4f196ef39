package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/mwantia/dungeonrun/internal/catalog"
	config "github.com/mwantia/dungeonrun/internal/config/tracker"
	"github.com/mwantia/dungeonrun/internal/persist"
	"github.com/mwantia/dungeonrun/internal/tracker"
	"github.com/mwantia/dungeonrun/pkg/log"

	"github.com/mwantia/fabric/pkg/container"
)

type TrackerApp struct {
	mutex sync.Mutex

	cfg *config.BaseTrackerConfig
	sc  *container.ServiceContainer
	log log.LoggerService
}

func NewApp(cfg *config.BaseTrackerConfig) *TrackerApp {
	return NewAppWithLogger(cfg, log.NewLoggerService("dungeonrun", cfg.Log))
}

func NewAppWithLogger(cfg *config.BaseTrackerConfig, logger log.LoggerService) *TrackerApp {
	return &TrackerApp{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: logger,
	}
}

func (ta *TrackerApp) setupServices() error {
	errs := container.Errors{}

	ta.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerService](ta.sc,
		container.AsSingleton(),
		container.WithInstance(ta.log)))

	ta.log.Debug("Registering 'StorageService'...")
	errs.Add(container.Register[*StorageService](ta.sc,
		container.AsSingleton(),
		container.AsFactory(ta.newStorageService)))

	ta.log.Debug("Registering 'Tracker'...")
	errs.Add(container.Register[*tracker.Tracker](ta.sc,
		container.AsSingleton(),
		container.AsFactory(ta.newTracker)))

	return errs.Errors()
}

func (ta *TrackerApp) newStorageService(ctx context.Context, sc *container.ServiceContainer) (any, error) {
	logger, err := container.Resolve[log.LoggerService](ctx, sc)
	if err != nil {
		return nil, err
	}
	return NewStorageService(ta.cfg.Storage, logger.Named("storage")), nil
}

func (ta *TrackerApp) newTracker(ctx context.Context, sc *container.ServiceContainer) (any, error) {
	logger, err := container.Resolve[log.LoggerService](ctx, sc)
	if err != nil {
		return nil, err
	}
	storage, err := container.Resolve[*StorageService](ctx, sc)
	if err != nil {
		return nil, err
	}
	if storage.Store() == nil {
		return nil, fmt.Errorf("storage has already been closed")
	}

	adapter := persist.NewAdapter(storage.Store(), logger.Named("persist"))
	cat := catalog.FromConfig(ta.cfg.Catalog)

	t, err := tracker.Load(ctx, adapter, cat, logger.Named("tracker"))
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker state: %w", err)
	}
	return t, nil
}

// Open registers the services and resolves the tracker, which connects and
// migrates the configured store and loads the tracker state from it. Anything
// opened on the way is released again when Open fails.
func (ta *TrackerApp) Open(ctx context.Context) error {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()

	if err := ta.setupServices(); err != nil {
		return err
	}

	if _, err := container.Resolve[*tracker.Tracker](ctx, ta.sc); err != nil {
		if cerr := ta.sc.Cleanup(ctx); cerr != nil {
			ta.log.Warn("Cleanup after failed open: %v", cerr)
		}
		return err
	}

	return nil
}

func (ta *TrackerApp) Tracker(ctx context.Context) (*tracker.Tracker, error) {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()

	return container.Resolve[*tracker.Tracker](ctx, ta.sc)
}

// Close runs the container cleanup, which closes the store.
func (ta *TrackerApp) Close(ctx context.Context) error {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()

	if err := ta.sc.Cleanup(ctx); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}
	return nil
}
