package service

import (
	"context"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type BalanceService interface {
	ComputeBalance(ctx context.Context, productID uuid.UUID, day string) (model.Balance, error)
	ListProductsWithBalance(ctx context.Context, day string, storeID *uuid.UUID) ([]model.ProductBalance, error)
}

type balanceService struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	unitRepo    repository.UnitRepository
	ledgerRepo  repository.LedgerRepository
	clock       Clock
	workers     int
	log         logrus.FieldLogger
}

func NewBalanceService(
	pRepo repository.ProductRepository,
	sRepo repository.StoreRepository,
	uRepo repository.UnitRepository,
	lRepo repository.LedgerRepository,
	clock Clock,
	workers int,
	log logrus.FieldLogger,
) BalanceService {
	if workers <= 0 {
		workers = 1
	}
	return &balanceService{
		productRepo: pRepo,
		storeRepo:   sRepo,
		unitRepo:    uRepo,
		ledgerRepo:  lRepo,
		clock:       clock,
		workers:     workers,
		log:         log,
	}
}

// ComputeBalance reads the row of day only. A day without a row is the zero
// balance; earlier days are never consulted.
func (s *balanceService) ComputeBalance(ctx context.Context, productID uuid.UUID, day string) (model.Balance, error) {
	day, err := s.clock.resolveDay("balanceService.ComputeBalance", day)
	if err != nil {
		return model.Balance{}, err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return model.Balance{}, err
	}
	entry, err := s.ledgerRepo.FindByProductAndDay(ctx, productID, day)
	if err != nil {
		return model.Balance{}, err
	}
	return model.BalanceFromEntry(productID, day, entry), nil
}

func (s *balanceService) ListProductsWithBalance(ctx context.Context, day string, storeID *uuid.UUID) ([]model.ProductBalance, error) {
	day, err := s.clock.resolveDay("balanceService.ListProductsWithBalance", day)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if storeID != nil {
		products, err = s.productRepo.FindByStore(ctx, *storeID)
	} else {
		products, err = s.productRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	storeNames, unitNames := s.names(ctx)

	results := make([]model.ProductBalance, len(products))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range products {
		i := i
		results[i] = model.ProductBalance{
			Product:   products[i],
			StoreName: storeNames[products[i].StoreID],
			UnitName:  unitNames[products[i].UnitID],
		}
		g.Go(func() error {
			item := &results[i]
			entry, err := s.ledgerRepo.FindByProductAndDay(ctx, item.ID, day)
			if err != nil {
				// one failed lookup must not sink the whole list
				item.Error = err.Error()
				logger.LogError(s.log, "balanceService", "ListProductsWithBalance", "ledger lookup", map[string]any{"product_id": item.ID, "day": day}, err)
				return nil
			}
			b := model.BalanceFromEntry(item.ID, day, entry)
			item.Opening = b.Opening
			item.Increase = b.Increase
			item.Decrease = b.Decrease
			item.Closing = b.Closing
			item.Available = true
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// names resolves store and unit display names. Lookup failures leave the
// names empty.
func (s *balanceService) names(ctx context.Context) (map[uuid.UUID]string, map[uuid.UUID]string) {
	storeNames := make(map[uuid.UUID]string)
	unitNames := make(map[uuid.UUID]string)

	var g errgroup.Group
	g.Go(func() error {
		stores, err := s.storeRepo.FindAll(ctx)
		if err != nil {
			logger.LogError(s.log, "balanceService", "names", "list stores", nil, err)
			return nil
		}
		for _, st := range stores {
			storeNames[st.ID] = st.Name
		}
		return nil
	})
	g.Go(func() error {
		units, err := s.unitRepo.FindAll(ctx)
		if err != nil {
			logger.LogError(s.log, "balanceService", "names", "list units", nil, err)
			return nil
		}
		for _, u := range units {
			unitNames[u.ID] = u.Name
		}
		return nil
	})
	_ = g.Wait()
	return storeNames, unitNames
}
