package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/investfolio-backend/internal/adapter/lock"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/investfolio-backend/internal/config"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/usecase/seeder"
	"github.com/simaogato/investfolio-backend/pkg/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// backend bundles the repositories of the configured store
type backend struct {
	Products     seeder.ProductWriter
	Holdings     domain.HoldingRepository
	Transactions domain.TransactionRepository
	UnitOfWork   domain.UnitOfWork

	migrate func(ctx context.Context) error
	close   func() error
}

func (b *backend) Migrate(ctx context.Context) error {
	if b.migrate == nil {
		return nil
	}
	return b.migrate(ctx)
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := connectPostgres(ctx, cfg.DSN(), log)
		if err != nil {
			return nil, err
		}
		return &backend{
			Products:     postgres.NewProductRepository(db),
			Holdings:     postgres.NewHoldingRepository(db),
			Transactions: postgres.NewTransactionRepository(db),
			UnitOfWork:   postgres.NewUnitOfWork(db),
			migrate:      db.Migrate,
			close:        db.Close,
		}, nil

	case config.StoreSQLite:
		db, err := sqlite.NewDB(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", db.Path()).Msg("Opened SQLite store")
		return &backend{
			Products:     sqlite.NewProductRepository(db),
			Holdings:     sqlite.NewHoldingRepository(db),
			Transactions: sqlite.NewTransactionRepository(db),
			UnitOfWork:   sqlite.NewUnitOfWork(db),
			migrate:      db.Migrate,
			close:        db.Close,
		}, nil

	case config.StoreMemory:
		store := memory.NewStore()
		log.Warn().Msg("Using in-memory store; data is lost on exit")
		return &backend{
			Products:     store,
			Holdings:     memory.NewHoldingRepository(store),
			Transactions: memory.NewTransactionRepository(store),
			UnitOfWork:   store,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// connectPostgres retries while the database container is still starting
func connectPostgres(ctx context.Context, dsn string, log zerolog.Logger) (*postgres.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := postgres.NewDB(dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, lastErr)
}

// openLocker returns the per-holding lock and a release function
func openLocker(cfg *config.Config, log zerolog.Logger) (domain.Locker, func() error, error) {
	if cfg.Lock.Driver != config.LockRedis {
		return lock.NewKeyedMutex(), func() error { return nil }, nil
	}

	ttl, err := cfg.LockTTL()
	if err != nil {
		return nil, nil, err
	}
	locker, err := lock.NewRedisLocker(lock.RedisConfig{
		Addr:     cfg.Lock.RedisAddr,
		Password: cfg.Lock.RedisPassword,
		DB:       cfg.Lock.RedisDB,
		LeaseTTL: ttl,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return locker, locker.Close, nil
}
