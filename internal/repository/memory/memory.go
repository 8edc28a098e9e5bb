// Package memory is an in-process document store implementing the
// repository interfaces. It backs the desktop/offline mode and the tests.
// All collections share one RWMutex, so every method is atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type productDay struct {
	productID uuid.UUID
	day       string
}

type Store struct {
	mu     sync.RWMutex
	closed bool
	now    func() time.Time

	// seq records insertion order; scans return rows in that order.
	seq      uint64
	order    map[uuid.UUID]uint64
	products map[uuid.UUID]model.Product
	stores   map[uuid.UUID]model.Store
	units    map[uuid.UUID]model.Unit
	ledger   map[uuid.UUID]model.LedgerEntry
	byDay    map[productDay]uuid.UUID
}

func New() *Store {
	return &Store{
		now:      time.Now,
		order:    make(map[uuid.UUID]uint64),
		products: make(map[uuid.UUID]model.Product),
		stores:   make(map[uuid.UUID]model.Store),
		units:    make(map[uuid.UUID]model.Unit),
		ledger:   make(map[uuid.UUID]model.LedgerEntry),
		byDay:    make(map[productDay]uuid.UUID),
	}
}

// Close makes every later call fail with a store-unavailable error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }
func (s *Store) Stores() repository.StoreRepository     { return &storeRepo{s} }
func (s *Store) Units() repository.UnitRepository       { return &unitRepo{s} }
func (s *Store) Ledger() repository.LedgerRepository    { return &ledgerRepo{s} }

var errClosed = apperror.Unavailable("memory", errStoreClosed{})

type errStoreClosed struct{}

func (errStoreClosed) Error() string { return "store is closed" }

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperror.Unavailable("memory", err)
	}
	if s.closed {
		return errClosed
	}
	return nil
}

// stamp assigns identity and timestamps to a new record. Caller holds mu.
func (s *Store) stamp(base *model.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := s.now()
	base.CreatedAt = now
	base.UpdatedAt = now
	s.seq++
	s.order[base.ID] = s.seq
}

// taken reports whether a caller-chosen id is already used. Caller holds mu.
func (s *Store) taken(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	_, ok := s.order[id]
	return ok
}

func (s *Store) sortByInsertion(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

// ---- products ----

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if r.s.taken(p.ID) {
		return apperror.Invalid("memory.Products.Create", "id %s already exists", p.ID)
	}
	r.s.stamp(&p.BaseModel)
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.filter(ctx, func(model.Product) bool { return true })
}

func (r *productRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Product, error) {
	return r.filter(ctx, func(p model.Product) bool { return p.StoreID == storeID })
}

func (r *productRepo) filter(ctx context.Context, keep func(model.Product) bool) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(r.s.products))
	for id, p := range r.s.products {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.products[id])
	}
	return out, nil
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, apperror.NotFound("memory.Products.FindByID", "product %s not found", id)
	}
	return &p, nil
}

func (r *productRepo) Update(ctx context.Context, id uuid.UUID, upd model.ProductUpdate) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, apperror.NotFound("memory.Products.Update", "product %s not found", id)
	}
	upd.Apply(&p)
	p.UpdatedAt = r.s.now()
	r.s.products[id] = p
	return &p, nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if _, ok := r.s.products[id]; !ok {
		return apperror.NotFound("memory.Products.Delete", "product %s not found", id)
	}
	for entryID, e := range r.s.ledger {
		if e.ProductID == id {
			r.s.removeEntry(entryID)
		}
	}
	delete(r.s.products, id)
	delete(r.s.order, id)
	return nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, func(model.Product) bool { return true })
}

func (r *productRepo) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return r.count(ctx, func(p model.Product) bool { return p.StoreID == storeID })
}

func (r *productRepo) CountByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	return r.count(ctx, func(p model.Product) bool { return p.UnitID == unitID })
}

func (r *productRepo) count(ctx context.Context, match func(model.Product) bool) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	var n int64
	for _, p := range r.s.products {
		if match(p) {
			n++
		}
	}
	return n, nil
}

// ---- stores ----

type storeRepo struct{ s *Store }

func (r *storeRepo) Create(ctx context.Context, st *model.Store) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if r.s.taken(st.ID) {
		return apperror.Invalid("memory.Stores.Create", "id %s already exists", st.ID)
	}
	r.s.stamp(&st.BaseModel)
	r.s.stores[st.ID] = *st
	return nil
}

func (r *storeRepo) FindAll(ctx context.Context) ([]model.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(r.s.stores))
	for id := range r.s.stores {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]model.Store, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.stores[id])
	}
	return out, nil
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	st, ok := r.s.stores[id]
	if !ok {
		return nil, apperror.NotFound("memory.Stores.FindByID", "store %s not found", id)
	}
	return &st, nil
}

func (r *storeRepo) Update(ctx context.Context, id uuid.UUID, upd model.StoreUpdate) (*model.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	st, ok := r.s.stores[id]
	if !ok {
		return nil, apperror.NotFound("memory.Stores.Update", "store %s not found", id)
	}
	upd.Apply(&st)
	st.UpdatedAt = r.s.now()
	r.s.stores[id] = st
	return &st, nil
}

func (r *storeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if _, ok := r.s.stores[id]; !ok {
		return apperror.NotFound("memory.Stores.Delete", "store %s not found", id)
	}
	delete(r.s.stores, id)
	delete(r.s.order, id)
	return nil
}

func (r *storeRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	return int64(len(r.s.stores)), nil
}

// ---- units ----

type unitRepo struct{ s *Store }

func (r *unitRepo) Create(ctx context.Context, u *model.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if r.s.taken(u.ID) {
		return apperror.Invalid("memory.Units.Create", "id %s already exists", u.ID)
	}
	r.s.stamp(&u.BaseModel)
	r.s.units[u.ID] = *u
	return nil
}

func (r *unitRepo) FindAll(ctx context.Context) ([]model.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(r.s.units))
	for id := range r.s.units {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]model.Unit, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.units[id])
	}
	return out, nil
}

func (r *unitRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	u, ok := r.s.units[id]
	if !ok {
		return nil, apperror.NotFound("memory.Units.FindByID", "unit %s not found", id)
	}
	return &u, nil
}

func (r *unitRepo) Update(ctx context.Context, id uuid.UUID, upd model.UnitUpdate) (*model.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	u, ok := r.s.units[id]
	if !ok {
		return nil, apperror.NotFound("memory.Units.Update", "unit %s not found", id)
	}
	upd.Apply(&u)
	u.UpdatedAt = r.s.now()
	r.s.units[id] = u
	return &u, nil
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if _, ok := r.s.units[id]; !ok {
		return apperror.NotFound("memory.Units.Delete", "unit %s not found", id)
	}
	delete(r.s.units, id)
	delete(r.s.order, id)
	return nil
}

func (r *unitRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return 0, err
	}
	return int64(len(r.s.units)), nil
}

// ---- ledger ----

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) Create(ctx context.Context, e *model.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if r.s.taken(e.ID) {
		return apperror.Invalid("memory.Ledger.Create", "id %s already exists", e.ID)
	}
	key := productDay{e.ProductID, e.Day}
	if _, ok := r.s.byDay[key]; ok {
		return apperror.Invalid("memory.Ledger.Create", "entry for product %s on %s already exists", e.ProductID, e.Day)
	}
	r.s.insertEntry(e)
	return nil
}

// insertEntry stores a new row. Caller holds mu and checked the key is free.
func (s *Store) insertEntry(e *model.LedgerEntry) {
	s.stamp(&e.BaseModel)
	s.ledger[e.ID] = *e
	s.byDay[productDay{e.ProductID, e.Day}] = e.ID
}

func (s *Store) removeEntry(id uuid.UUID) {
	e, ok := s.ledger[id]
	if !ok {
		return
	}
	delete(s.ledger, id)
	delete(s.byDay, productDay{e.ProductID, e.Day})
	delete(s.order, id)
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	e, ok := r.s.ledger[id]
	if !ok {
		return nil, apperror.NotFound("memory.Ledger.FindByID", "ledger entry %s not found", id)
	}
	return &e, nil
}

func (r *ledgerRepo) FindByProductAndDay(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	id, ok := r.s.byDay[productDay{productID, day}]
	if !ok {
		return nil, nil
	}
	e := r.s.ledger[id]
	return &e, nil
}

func (r *ledgerRepo) FindLatestOnOrBefore(ctx context.Context, productID uuid.UUID, day string) (*model.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	var latest *model.LedgerEntry
	for _, e := range r.s.ledger {
		if e.ProductID != productID || e.Day > day {
			continue
		}
		if latest == nil || e.Day > latest.Day {
			e := e
			latest = &e
		}
	}
	return latest, nil
}

func (r *ledgerRepo) ProductIDsForDay(ctx context.Context, day string) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for key := range r.s.byDay {
		if key.day == day {
			ids = append(ids, key.productID)
		}
	}
	return ids, nil
}

func (r *ledgerRepo) UpsertSnapshot(ctx context.Context, productID uuid.UUID, day string, qty decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if id, ok := r.s.byDay[productDay{productID, day}]; ok {
		e := r.s.ledger[id]
		e.Qty = qty
		e.UpdatedAt = r.s.now()
		r.s.ledger[id] = e
		return nil
	}
	r.s.insertEntry(&model.LedgerEntry{ProductID: productID, Day: day, Qty: qty})
	return nil
}

func (r *ledgerRepo) AddMovement(ctx context.Context, productID uuid.UUID, day string, opening, increase, decrease decimal.Decimal, description string) (*model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	if id, ok := r.s.byDay[productDay{productID, day}]; ok {
		e := r.s.ledger[id]
		e.Increase = e.Increase.Add(increase)
		e.Decrease = e.Decrease.Add(decrease)
		if description != "" {
			e.Description = description
		}
		e.UpdatedAt = r.s.now()
		r.s.ledger[id] = e
		return &e, nil
	}
	e := model.LedgerEntry{
		ProductID:   productID,
		Day:         day,
		Qty:         opening,
		Increase:    increase,
		Decrease:    decrease,
		Description: description,
	}
	r.s.insertEntry(&e)
	return &e, nil
}

func (r *ledgerRepo) Update(ctx context.Context, id uuid.UUID, upd model.LedgerEntryUpdate) (*model.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	e, ok := r.s.ledger[id]
	if !ok {
		return nil, apperror.NotFound("memory.Ledger.Update", "ledger entry %s not found", id)
	}
	upd.Apply(&e)
	e.UpdatedAt = r.s.now()
	r.s.ledger[id] = e
	return &e, nil
}

func (r *ledgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if _, ok := r.s.ledger[id]; !ok {
		return apperror.NotFound("memory.Ledger.Delete", "ledger entry %s not found", id)
	}
	r.s.removeEntry(id)
	return nil
}

func (r *ledgerRepo) DeleteByProductAndDay(ctx context.Context, productID uuid.UUID, day string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(ctx); err != nil {
		return err
	}
	if id, ok := r.s.byDay[productDay{productID, day}]; ok {
		r.s.removeEntry(id)
	}
	return nil
}

func (r *ledgerRepo) Totals(ctx context.Context, productID uuid.UUID, day string) (model.LedgerSums, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sums model.LedgerSums
	if err := r.s.check(ctx); err != nil {
		return sums, err
	}
	for _, e := range r.s.ledger {
		if e.ProductID == productID && e.Day <= day {
			sums.Increase = sums.Increase.Add(e.Increase)
			sums.Decrease = sums.Decrease.Add(e.Decrease)
		}
	}
	return sums, nil
}

func (r *ledgerRepo) FirstDay(ctx context.Context) (string, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return "", false, err
	}
	first := ""
	for _, e := range r.s.ledger {
		if first == "" || e.Day < first {
			first = e.Day
		}
	}
	return first, first != "", nil
}

func (r *ledgerRepo) Page(ctx context.Context, filter model.HistoryFilter) ([]model.LedgerEntry, int64, model.LedgerSums, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sums model.LedgerSums
	if err := r.s.check(ctx); err != nil {
		return nil, 0, sums, err
	}

	matched := make([]model.LedgerEntry, 0)
	for _, e := range r.s.ledger {
		if !matchesHistory(e, filter) {
			continue
		}
		matched = append(matched, e)
		sums.Increase = sums.Increase.Add(e.Increase)
		sums.Decrease = sums.Decrease.Add(e.Decrease)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Day != matched[j].Day {
			return matched[i].Day > matched[j].Day
		}
		return r.s.order[matched[i].ID] < r.s.order[matched[j].ID]
	})

	total := int64(len(matched))
	start := min(filter.Offset, len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}
	return matched[start:end], total, sums, nil
}

func matchesHistory(e model.LedgerEntry, f model.HistoryFilter) bool {
	if f.ProductID != nil && e.ProductID != *f.ProductID {
		return false
	}
	if f.From != "" && e.Day < f.From {
		return false
	}
	if f.To != "" && e.Day > f.To {
		return false
	}
	if f.Search != "" && !strings.Contains(e.Day, f.Search) {
		return false
	}
	return true
}

func (r *ledgerRepo) MovementByDay(ctx context.Context, from, to string) ([]model.DailyMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx); err != nil {
		return nil, err
	}
	byDay := make(map[string]*model.DailyMovement)
	for _, e := range r.s.ledger {
		if e.Day < from || e.Day > to {
			continue
		}
		m, ok := byDay[e.Day]
		if !ok {
			m = &model.DailyMovement{Day: e.Day}
			byDay[e.Day] = m
		}
		m.Inbound = m.Inbound.Add(e.Increase)
		m.Outbound = m.Outbound.Add(e.Decrease)
	}
	out := make([]model.DailyMovement, 0, len(byDay))
	for _, m := range byDay {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
