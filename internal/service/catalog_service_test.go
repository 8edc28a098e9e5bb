package service_test

import (
	"testing"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(f *fixture) service.CatalogService {
	return service.NewCatalogService(f.products, f.stores, f.units, f.events, logger.Discard())
}

func strPtr(s string) *string { return &s }

func TestCatalog_StoreLifecycle(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	svc := newCatalogService(f)

	st := &model.Store{Name: "Warehouse", Description: "north"}
	require.NoError(t, svc.CreateStore(f.ctx, st))
	assert.NotEqual(t, uuid.Nil, st.ID)

	updated, err := svc.UpdateStore(f.ctx, st.ID, model.StoreUpdate{Name: strPtr("Depot")})
	require.NoError(t, err)
	assert.Equal(t, "Depot", updated.Name)
	assert.Equal(t, "north", updated.Description)

	list, err := svc.ListStores(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteStore(f.ctx, st.ID))
	_, err = svc.GetStore(f.ctx, st.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Equal(t, []string{ws.ActionCreated, ws.ActionUpdated, ws.ActionDeleted}, f.events.Actions())
}

func TestCatalog_Validation(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	svc := newCatalogService(f)

	assert.ErrorIs(t, svc.CreateStore(f.ctx, &model.Store{}), apperror.ErrInvalidInput)
	assert.ErrorIs(t, svc.CreateUnit(f.ctx, &model.Unit{}), apperror.ErrInvalidInput)
	assert.ErrorIs(t, svc.CreateProduct(f.ctx, &model.Product{Name: "x"}), apperror.ErrInvalidInput)

	st := f.store("A")
	u := f.unit("kg")
	bad := "2024-02-30"
	err := svc.CreateProduct(f.ctx, &model.Product{Name: "x", StoreID: st.ID, UnitID: u.ID, ExpiryDate: &bad})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.UpdateStore(f.ctx, st.ID, model.StoreUpdate{Name: strPtr("")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCatalog_ReferentialGuard(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	svc := newCatalogService(f)
	st := f.store("A")
	u := f.unit("kg")
	p := f.product("rice", st, u)

	err := svc.DeleteStore(f.ctx, st.ID)
	assert.ErrorIs(t, err, apperror.ErrReferentialIntegrity)
	err = svc.DeleteUnit(f.ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrReferentialIntegrity)

	// nothing was removed
	_, err = svc.GetStore(f.ctx, st.ID)
	require.NoError(t, err)
	_, err = svc.GetUnit(f.ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(f.ctx, p.ID))
	require.NoError(t, svc.DeleteStore(f.ctx, st.ID))
	require.NoError(t, svc.DeleteUnit(f.ctx, u.ID))
}

func TestCatalog_ProductReferencesMustExist(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	svc := newCatalogService(f)
	st := f.store("A")
	u := f.unit("kg")

	err := svc.CreateProduct(f.ctx, &model.Product{Name: "x", StoreID: uuid.New(), UnitID: u.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	err = svc.CreateProduct(f.ctx, &model.Product{Name: "x", StoreID: st.ID, UnitID: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p := &model.Product{Name: "x", StoreID: st.ID, UnitID: u.ID}
	require.NoError(t, svc.CreateProduct(f.ctx, p))

	missing := uuid.New()
	_, err = svc.UpdateProduct(f.ctx, p.ID, model.ProductUpdate{UnitID: &missing})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	other := f.store("B")
	updated, err := svc.UpdateProduct(f.ctx, p.ID, model.ProductUpdate{StoreID: &other.ID, Name: strPtr("y")})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.StoreID)
	assert.Equal(t, "y", updated.Name)

	inB, err := svc.ListProducts(f.ctx, &other.ID)
	require.NoError(t, err)
	assert.Len(t, inB, 1)
	inA, err := svc.ListProducts(f.ctx, &st.ID)
	require.NoError(t, err)
	assert.Empty(t, inA)
}

func TestCatalog_DeleteProductRemovesLedger(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	svc := newCatalogService(f)
	products := f.seedProducts(2)
	f.entry(products[0].ID, "2024-01-01", "1", "0", "0")
	f.entry(products[0].ID, "2024-01-02", "1", "0", "0")
	f.entry(products[1].ID, "2024-01-02", "3", "0", "0")

	require.NoError(t, svc.DeleteProduct(f.ctx, products[0].ID))

	_, err := svc.GetProduct(f.ctx, products[0].ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, total, _, err := f.ledger.Page(f.ctx, model.HistoryFilter{ProductID: &products[0].ID, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.EqualValues(t, 1, f.rowsOn(products[1].ID, "2024-01-02"))

	assert.ErrorIs(t, svc.DeleteProduct(f.ctx, products[0].ID), apperror.ErrNotFound)
}

func TestCatalog_CreateIgnoresClientID(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	svc := newCatalogService(f)
	st := f.store("Main")
	u := f.unit("kg")
	p := f.product("Flour", st, u)

	hijackStore := &model.Store{BaseModel: model.BaseModel{ID: st.ID}, Name: "Hijack"}
	require.NoError(t, svc.CreateStore(f.ctx, hijackStore))
	assert.NotEqual(t, st.ID, hijackStore.ID)

	hijackUnit := &model.Unit{BaseModel: model.BaseModel{ID: u.ID}, Name: "lb"}
	require.NoError(t, svc.CreateUnit(f.ctx, hijackUnit))
	assert.NotEqual(t, u.ID, hijackUnit.ID)

	hijackProduct := &model.Product{BaseModel: model.BaseModel{ID: p.ID}, Name: "Sugar", StoreID: st.ID, UnitID: u.ID}
	require.NoError(t, svc.CreateProduct(f.ctx, hijackProduct))
	assert.NotEqual(t, p.ID, hijackProduct.ID)

	gotStore, err := svc.GetStore(f.ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", gotStore.Name)
	gotUnit, err := svc.GetUnit(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "kg", gotUnit.Name)
	gotProduct, err := svc.GetProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flour", gotProduct.Name)
}

func TestCatalog_DeleteProductFailureKeepsLedger(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	products := f.seedProducts(1)
	f.entry(products[0].ID, "2024-01-01", "1", "0", "0")
	f.entry(products[0].ID, "2024-01-02", "1", "0", "0")
	f.products = failingProducts{ProductRepository: f.products}
	svc := newCatalogService(f)

	err := svc.DeleteProduct(f.ctx, products[0].ID)
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)

	_, err = svc.GetProduct(f.ctx, products[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.rowsOn(products[0].ID, "2024-01-01"))
	assert.EqualValues(t, 1, f.rowsOn(products[0].ID, "2024-01-02"))
	assert.NotContains(t, f.events.Actions(), ws.ActionDeleted)
}
