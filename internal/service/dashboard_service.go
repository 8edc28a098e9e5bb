package service

import (
	"context"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/calendar"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultMovementDays = 7

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]model.DailyMovement, error)
	GetStats(ctx context.Context, day string) (*model.DashboardStats, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	unitRepo    repository.UnitRepository
	ledgerRepo  repository.LedgerRepository
	balances    BalanceService
	clock       Clock
	lowStock    decimal.Decimal
}

func NewDashboardService(
	pRepo repository.ProductRepository,
	sRepo repository.StoreRepository,
	uRepo repository.UnitRepository,
	lRepo repository.LedgerRepository,
	balances BalanceService,
	clock Clock,
	lowStockThreshold int64,
) DashboardService {
	return &dashboardService{
		productRepo: pRepo,
		storeRepo:   sRepo,
		unitRepo:    uRepo,
		ledgerRepo:  lRepo,
		balances:    balances,
		clock:       clock,
		lowStock:    decimal.NewFromInt(lowStockThreshold),
	}
}

// GetStockMovement returns one entry per day for the last days days,
// today included. Days without movements are zero.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]model.DailyMovement, error) {
	if days <= 0 {
		days = DefaultMovementDays
	}
	endDate := s.clock.Today()
	startDate, err := calendar.AddDays(endDate, -(days - 1))
	if err != nil {
		return nil, err
	}

	rows, err := s.ledgerRepo.MovementByDay(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]model.DailyMovement, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	span, err := calendar.Range(startDate, endDate)
	if err != nil {
		return nil, err
	}
	out := make([]model.DailyMovement, 0, len(span))
	for _, d := range span {
		m, ok := byDay[d]
		if !ok {
			m = model.DailyMovement{Day: d}
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *dashboardService) GetStats(ctx context.Context, day string) (*model.DashboardStats, error) {
	day, err := s.clock.resolveDay("dashboardService.GetStats", day)
	if err != nil {
		return nil, err
	}
	stats := &model.DashboardStats{Day: day}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.productRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalStores, err = s.storeRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUnits, err = s.unitRepo.Count(gctx)
		return err
	})
	var items []model.ProductBalance
	g.Go(func() (err error) {
		items, err = s.balances.ListProductsWithBalance(gctx, day, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, it := range items {
		if !it.Available {
			continue
		}
		stats.DayIncrease = stats.DayIncrease.Add(it.Increase)
		stats.DayDecrease = stats.DayDecrease.Add(it.Decrease)
		switch {
		case it.Closing.IsNegative():
			stats.NegativeStock++
		case it.Closing.LessThanOrEqual(s.lowStock):
			stats.LowStock++
		}
	}
	return stats, nil
}
