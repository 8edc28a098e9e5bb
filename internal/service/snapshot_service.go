package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-inventory-ledger/internal/lock"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/calendar"
	"go-inventory-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SnapshotResult summarises one EnsureTodaySnapshot run.
type SnapshotResult struct {
	Day      string `json:"day"`
	Products int    `json:"products"`
	Existing int    `json:"existing"`
	Written  int    `json:"written"`
	Failed   int    `json:"failed"`
	Removed  int    `json:"removed"`
}

type SnapshotService interface {
	// EnsureTodaySnapshot gives every product a row for today holding the
	// closing balance of its latest earlier row. Safe to call any number of
	// times, concurrently too.
	EnsureTodaySnapshot(ctx context.Context) (SnapshotResult, error)
	// Run calls EnsureTodaySnapshot whenever the calendar day changes until
	// ctx is cancelled.
	Run(ctx context.Context)
}

type SnapshotOptions struct {
	Interval time.Duration
	LockTTL  time.Duration
}

type snapshotService struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	locker      lock.Locker
	notifier    Notifier
	clock       Clock
	opts        SnapshotOptions
	log         logrus.FieldLogger

	mu      sync.Mutex
	lastDay string
}

func NewSnapshotService(
	pRepo repository.ProductRepository,
	lRepo repository.LedgerRepository,
	locker lock.Locker,
	notifier Notifier,
	clock Clock,
	opts SnapshotOptions,
	log logrus.FieldLogger,
) SnapshotService {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	return &snapshotService{
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		locker:      locker,
		notifier:    notifier,
		clock:       clock,
		opts:        opts,
		log:         log,
	}
}

func (s *snapshotService) EnsureTodaySnapshot(ctx context.Context) (SnapshotResult, error) {
	today := s.clock.Today()
	result := SnapshotResult{Day: today}

	release := s.obtainLock(ctx, today)
	defer release()

	covered, err := s.ledgerRepo.ProductIDsForDay(ctx, today)
	if err != nil {
		return result, err
	}
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return result, err
	}
	result.Products = len(products)

	known := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}
	has := make(map[uuid.UUID]bool, len(covered))
	for _, id := range covered {
		if !known[id] {
			// row left behind by a deleted product
			if err := s.ledgerRepo.DeleteByProductAndDay(ctx, id, today); err != nil {
				logger.LogError(s.log, "snapshotService", "EnsureTodaySnapshot", "remove stale row", map[string]any{"product_id": id, "day": today}, err)
				continue
			}
			result.Removed++
			continue
		}
		has[id] = true
	}
	result.Existing = len(has)

	if result.Existing == len(products) {
		s.markDone(today)
		return result, nil
	}

	yesterday, err := calendar.Prev(today)
	if err != nil {
		return result, err
	}
	for _, p := range products {
		if has[p.ID] {
			continue
		}
		if err := s.rollForward(ctx, p.ID, yesterday, today); err != nil {
			result.Failed++
			logger.LogError(s.log, "snapshotService", "EnsureTodaySnapshot", "write snapshot", map[string]any{"product_id": p.ID, "day": today}, err)
			continue
		}
		result.Written++
	}

	if result.Failed == 0 {
		s.markDone(today)
	}
	if result.Written > 0 {
		notify(s.notifier, ws.Event{
			Type:    ws.TypeStockUpdate,
			Action:  ws.ActionSnapshotCreated,
			Data:    result,
			Message: "daily snapshot created for " + today,
		})
	}
	s.log.WithFields(logrus.Fields{
		"day":      today,
		"written":  result.Written,
		"failed":   result.Failed,
		"existing": result.Existing,
		"removed":  result.Removed,
	}).Info("daily snapshot")
	return result, nil
}

// rollForward writes today's opening from the latest row up to yesterday,
// so days without any row are bridged.
func (s *snapshotService) rollForward(ctx context.Context, productID uuid.UUID, yesterday, today string) error {
	prev, err := s.ledgerRepo.FindLatestOnOrBefore(ctx, productID, yesterday)
	if err != nil {
		return err
	}
	qty := decimal.Zero
	if prev != nil {
		qty = prev.Closing()
	}
	return s.ledgerRepo.UpsertSnapshot(ctx, productID, today, qty)
}

// obtainLock serialises runs across processes when possible. The upsert
// keeps the result correct without it, so failures only get logged.
func (s *snapshotService) obtainLock(ctx context.Context, day string) func() {
	if s.locker == nil {
		return func() {}
	}
	release, err := s.locker.Obtain(ctx, "snapshot:"+day, s.opts.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			s.log.WithField("day", day).Warn("snapshot lock busy, continuing without it")
		} else {
			s.log.WithError(err).WithField("day", day).Warn("snapshot lock unavailable, continuing without it")
		}
		return func() {}
	}
	return release
}

func (s *snapshotService) markDone(day string) {
	s.mu.Lock()
	s.lastDay = day
	s.mu.Unlock()
}

func (s *snapshotService) doneFor(day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDay == day
}

func (s *snapshotService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.opts.Interval.String()).Info("snapshot scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("snapshot scheduler stopped")
			return
		case <-ticker.C:
			if s.doneFor(s.clock.Today()) {
				continue
			}
			if _, err := s.EnsureTodaySnapshot(ctx); err != nil {
				logger.LogError(s.log, "snapshotService", "Run", "ensure today snapshot", nil, err)
			}
		}
	}
}
