package factory

import (
	"context"
	"fmt"
	"sync"

	"booksummary-service/internal/client"
	"booksummary-service/internal/config"
	"booksummary-service/internal/notify"
	"booksummary-service/internal/repository"
	"booksummary-service/internal/repository/file"
	"booksummary-service/internal/repository/redisrepo"
	"booksummary-service/internal/service"
	"booksummary-service/internal/store"
	"booksummary-service/internal/util"
)

// snapshotBackend is what a backend must provide: both the identity snapshot
// and the book catalog live behind the same storage.
type snapshotBackend interface {
	repository.SnapshotRepository
	repository.BookRepository
}

// Factory manages the lifecycle of all application dependencies.
type Factory struct {
	config *config.Config
	store  *store.Store

	redisClient *client.RedisClient
	relay       notify.Relay

	serviceFactory *service.ServiceFactory

	cleanupCancel context.CancelFunc
	closeOnce     sync.Once
}

// NewFactory loads config, initializes logging, opens the snapshot store,
// seeds the demo accounts when empty and wires the services.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	ctx := context.Background()

	backend, err := f.initBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot backend: %w", err)
	}

	st, err := store.Open(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	f.store = st

	f.relay = notify.NewHTTPRelay(cfg.Relay)
	f.serviceFactory = service.NewServiceFactory(st, backend, f.relay, cfg, util.Get())

	if err := f.serviceFactory.UserService().SeedIfEmpty(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed demo accounts: %w", err)
	}

	// Housekeeping: evict expired OTPs on a timer for the process lifetime.
	cleanupCtx, cancel := context.WithCancel(context.Background())
	f.cleanupCancel = cancel
	f.serviceFactory.OTPService().StartCleanupLoop(cleanupCtx, cfg.OTP.CleanupInterval)

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.String("snapshot_backend", cfg.Snapshot.Backend),
	)
	return f, nil
}

func (f *Factory) initBackend(cfg *config.Config) (snapshotBackend, error) {
	switch cfg.Snapshot.Backend {
	case "redis":
		redisClient, err := client.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		f.redisClient = redisClient
		return redisrepo.NewRepository(redisClient), nil
	case "file", "":
		return file.NewRepository(cfg.Snapshot.Dir)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) ServiceFactory() *service.ServiceFactory {
	return f.serviceFactory
}

// Close stops background work and releases clients. Safe to call twice.
func (f *Factory) Close() {
	f.closeOnce.Do(func() {
		if f.cleanupCancel != nil {
			f.cleanupCancel()
		}
		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close redis client", util.ErrorField(err))
			}
		}
		util.Sync()
	})
}
