// Package storage opens the configured record store backend and the
// snapshot lock.
package storage

import (
	"context"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/lock"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/repository/memory"
	"go-inventory-ledger/pkg/database"

	"github.com/sirupsen/logrus"
)

type Repositories struct {
	Products repository.ProductRepository
	Stores   repository.StoreRepository
	Units    repository.UnitRepository
	Ledger   repository.LedgerRepository

	close func() error
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open returns repositories for cfg.StorageDriver. Relational backends are
// migrated before use.
func Open(cfg *config.Config, log *logrus.Logger) (*Repositories, error) {
	if cfg.StorageDriver == "memory" {
		mem := memory.New()
		log.Warn("using in-memory storage, data is lost on exit")
		return &Repositories{
			Products: mem.Products(),
			Stores:   mem.Stores(),
			Units:    mem.Units(),
			Ledger:   mem.Ledger(),
			close:    mem.Close,
		}, nil
	}

	db, err := database.Connect(cfg.StorageDriver, cfg.DSN(), log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &Repositories{
		Products: repository.NewProductRepo(db),
		Stores:   repository.NewStoreRepo(db),
		Units:    repository.NewUnitRepo(db),
		Ledger:   repository.NewLedgerRepo(db),
		close:    sqlDB.Close,
	}, nil
}

// OpenLocker uses Redis when redisURL is set and reachable, and an
// in-process locker otherwise.
func OpenLocker(ctx context.Context, redisURL string, log *logrus.Logger) (lock.Locker, func() error) {
	noop := func() error { return nil }
	if redisURL == "" {
		return lock.NewLocalLocker(), noop
	}
	rdb, err := database.NewRedis(ctx, redisURL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, snapshot lock is process-local")
		return lock.NewLocalLocker(), noop
	}
	log.Info("redis connected, snapshot lock is shared")
	return lock.NewRedisLocker(rdb), rdb.Close
}
