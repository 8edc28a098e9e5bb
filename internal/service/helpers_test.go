package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/repository/memory"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// fakeClock is a settable "now" shared with the services under test.
type fakeClock struct {
	now atomic.Value
}

func newFakeClock(day string) *fakeClock {
	c := &fakeClock{}
	c.Set(day)
	return c
}

// Set moves the clock to noon of day.
func (c *fakeClock) Set(day string) {
	t, err := calendar.Parse(day)
	if err != nil {
		panic(err)
	}
	c.now.Store(t.Add(12 * time.Hour))
}

func (c *fakeClock) Now() time.Time {
	return c.now.Load().(time.Time)
}

func (c *fakeClock) Clock() service.Clock {
	return service.Clock{Now: c.Now, Location: time.UTC}
}

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	mem      *memory.Store
	products repository.ProductRepository
	stores   repository.StoreRepository
	units    repository.UnitRepository
	ledger   repository.LedgerRepository
	clock    *fakeClock
	events   *recorder
}

func newFixture(t *testing.T, today string) *fixture {
	mem := memory.New()
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		mem:      mem,
		products: mem.Products(),
		stores:   mem.Stores(),
		units:    mem.Units(),
		ledger:   mem.Ledger(),
		clock:    newFakeClock(today),
		events:   &recorder{},
	}
}

func (f *fixture) store(name string) model.Store {
	s := model.Store{Name: name}
	require.NoError(f.t, f.stores.Create(f.ctx, &s))
	return s
}

func (f *fixture) unit(name string) model.Unit {
	u := model.Unit{Name: name}
	require.NoError(f.t, f.units.Create(f.ctx, &u))
	return u
}

func (f *fixture) product(name string, store model.Store, unit model.Unit) model.Product {
	p := model.Product{Name: name, StoreID: store.ID, UnitID: unit.ID}
	require.NoError(f.t, f.products.Create(f.ctx, &p))
	return p
}

// seedProducts creates n products in one store and unit.
func (f *fixture) seedProducts(n int) []model.Product {
	st := f.store("Main")
	u := f.unit("pcs")
	out := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.product("Product "+string(rune('A'+i)), st, u))
	}
	return out
}

func (f *fixture) entry(productID uuid.UUID, day, qty, inc, decr string) model.LedgerEntry {
	e := model.LedgerEntry{ProductID: productID, Day: day, Qty: dec(qty), Increase: dec(inc), Decrease: dec(decr)}
	require.NoError(f.t, f.ledger.Create(f.ctx, &e))
	return e
}

// rowsOn counts the ledger rows of a product on day.
func (f *fixture) rowsOn(productID uuid.UUID, day string) int64 {
	_, total, _, err := f.ledger.Page(f.ctx, model.HistoryFilter{ProductID: &productID, From: day, To: day, Limit: 10})
	require.NoError(f.t, err)
	return total
}

var errBoom = apperror.Unavailable("test", errors.New("boom"))

// flakyLedger fails selected calls for selected products.
type flakyLedger struct {
	repository.LedgerRepository
	failLookup map[uuid.UUID]bool
	failUpsert map[uuid.UUID]bool
}

func (l *flakyLedger) FindByProductAndDay(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error) {
	if l.failLookup[productID] {
		return nil, errBoom
	}
	return l.LedgerRepository.FindByProductAndDay(ctx, productID, day)
}

func (l *flakyLedger) UpsertSnapshot(ctx context.Context, productID uuid.UUID, day string, qty decimal.Decimal) error {
	if l.failUpsert[productID] {
		return errBoom
	}
	return l.LedgerRepository.UpsertSnapshot(ctx, productID, day, qty)
}

// failingProducts makes Delete fail without touching the wrapped store.
type failingProducts struct {
	repository.ProductRepository
}

func (failingProducts) Delete(context.Context, uuid.UUID) error {
	return errBoom
}
