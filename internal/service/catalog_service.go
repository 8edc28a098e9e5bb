package service

import (
	"context"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CatalogService manages stores, units and products. Stores and units
// still referenced by a product cannot be deleted.
type CatalogService interface {
	CreateStore(ctx context.Context, store *model.Store) error
	ListStores(ctx context.Context) ([]model.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (*model.Store, error)
	UpdateStore(ctx context.Context, id uuid.UUID, upd model.StoreUpdate) (*model.Store, error)
	DeleteStore(ctx context.Context, id uuid.UUID) error

	CreateUnit(ctx context.Context, unit *model.Unit) error
	ListUnits(ctx context.Context) ([]model.Unit, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	UpdateUnit(ctx context.Context, id uuid.UUID, upd model.UnitUpdate) (*model.Unit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, product *model.Product) error
	ListProducts(ctx context.Context, storeID *uuid.UUID) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, upd model.ProductUpdate) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	unitRepo    repository.UnitRepository
	notifier    Notifier
	log         logrus.FieldLogger
}

func NewCatalogService(
	pRepo repository.ProductRepository,
	sRepo repository.StoreRepository,
	uRepo repository.UnitRepository,
	notifier Notifier,
	log logrus.FieldLogger,
) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		storeRepo:   sRepo,
		unitRepo:    uRepo,
		notifier:    notifier,
		log:         log,
	}
}

func (s *catalogService) changed(entity, action string, data interface{}) {
	notify(s.notifier, ws.Event{
		Type:    ws.TypeCatalog,
		Action:  action,
		Data:    data,
		Message: entity + " " + action,
	})
}

// ---- stores ----

func (s *catalogService) CreateStore(ctx context.Context, store *model.Store) error {
	if err := validate("catalogService.CreateStore", store); err != nil {
		return err
	}
	store.BaseModel = model.BaseModel{}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return err
	}
	s.changed("store", ws.ActionCreated, store)
	return nil
}

func (s *catalogService) ListStores(ctx context.Context) ([]model.Store, error) {
	return s.storeRepo.FindAll(ctx)
}

func (s *catalogService) GetStore(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	return s.storeRepo.FindByID(ctx, id)
}

func (s *catalogService) UpdateStore(ctx context.Context, id uuid.UUID, upd model.StoreUpdate) (*model.Store, error) {
	if err := validate("catalogService.UpdateStore", &upd); err != nil {
		return nil, err
	}
	store, err := s.storeRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.changed("store", ws.ActionUpdated, store)
	return store, nil
}

func (s *catalogService) DeleteStore(ctx context.Context, id uuid.UUID) error {
	const op = "catalogService.DeleteStore"
	if _, err := s.storeRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.productRepo.CountByStore(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.Integrity(op, "store is used by %d product(s)", n)
	}
	if err := s.storeRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed("store", ws.ActionDeleted, map[string]uuid.UUID{"id": id})
	return nil
}

// ---- units ----

func (s *catalogService) CreateUnit(ctx context.Context, unit *model.Unit) error {
	if err := validate("catalogService.CreateUnit", unit); err != nil {
		return err
	}
	unit.BaseModel = model.BaseModel{}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return err
	}
	s.changed("unit", ws.ActionCreated, unit)
	return nil
}

func (s *catalogService) ListUnits(ctx context.Context) ([]model.Unit, error) {
	return s.unitRepo.FindAll(ctx)
}

func (s *catalogService) GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	return s.unitRepo.FindByID(ctx, id)
}

func (s *catalogService) UpdateUnit(ctx context.Context, id uuid.UUID, upd model.UnitUpdate) (*model.Unit, error) {
	if err := validate("catalogService.UpdateUnit", &upd); err != nil {
		return nil, err
	}
	unit, err := s.unitRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.changed("unit", ws.ActionUpdated, unit)
	return unit, nil
}

func (s *catalogService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	const op = "catalogService.DeleteUnit"
	if _, err := s.unitRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.productRepo.CountByUnit(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.Integrity(op, "unit is used by %d product(s)", n)
	}
	if err := s.unitRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed("unit", ws.ActionDeleted, map[string]uuid.UUID{"id": id})
	return nil
}

// ---- products ----

// checkRefs makes sure the store and unit a product points to exist.
func (s *catalogService) checkRefs(ctx context.Context, storeID, unitID *uuid.UUID) error {
	if storeID != nil {
		if _, err := s.storeRepo.FindByID(ctx, *storeID); err != nil {
			return err
		}
	}
	if unitID != nil {
		if _, err := s.unitRepo.FindByID(ctx, *unitID); err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := validate("catalogService.CreateProduct", product); err != nil {
		return err
	}
	if err := s.checkRefs(ctx, &product.StoreID, &product.UnitID); err != nil {
		return err
	}
	product.BaseModel = model.BaseModel{}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	s.changed("product", ws.ActionCreated, product)
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, storeID *uuid.UUID) ([]model.Product, error) {
	if storeID != nil {
		return s.productRepo.FindByStore(ctx, *storeID)
	}
	return s.productRepo.FindAll(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, upd model.ProductUpdate) (*model.Product, error) {
	if err := validate("catalogService.UpdateProduct", &upd); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, upd.StoreID, upd.UnitID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.changed("product", ws.ActionUpdated, product)
	return product, nil
}

// DeleteProduct removes the product and its ledger rows as one unit; a
// failure leaves both in place.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted with its ledger")
	s.changed("product", ws.ActionDeleted, map[string]uuid.UUID{"id": id})
	return nil
}
