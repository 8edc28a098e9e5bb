// Command snapshot writes today's ledger rows once and exits. Meant for
// cron jobs on deployments where the API process may not run at midnight.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/storage"
	"go-inventory-ledger/pkg/calendar"
	"go-inventory-ledger/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(cfg, log)
	if err != nil {
		log.WithError(err).Error("open storage")
		return 1
	}
	defer repos.Close()

	locker, closeLocker := storage.OpenLocker(ctx, cfg.RedisURL, log)
	defer closeLocker()

	clock := service.Clock{Location: calendar.LoadLocation(cfg.Timezone)}
	svc := service.NewSnapshotService(repos.Products, repos.Ledger, locker, nil, clock,
		service.SnapshotOptions{Interval: cfg.SnapshotInterval, LockTTL: cfg.SnapshotLockTTL}, log)

	result, err := svc.EnsureTodaySnapshot(ctx)
	if err != nil {
		log.WithError(err).Error("snapshot failed")
		return 1
	}
	log.WithFields(logrus.Fields{
		"day":     result.Day,
		"written": result.Written,
		"failed":  result.Failed,
	}).Info("snapshot done")
	if result.Failed > 0 {
		return 2
	}
	return 0
}
