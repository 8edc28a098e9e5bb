package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/lock"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshotService(f *fixture, ledger repository.LedgerRepository, locker lock.Locker) service.SnapshotService {
	if ledger == nil {
		ledger = f.ledger
	}
	return service.NewSnapshotService(f.products, ledger, locker, f.events, f.clock.Clock(),
		service.SnapshotOptions{Interval: 10 * time.Millisecond, LockTTL: 50 * time.Millisecond}, logger.Discard())
}

func TestEnsureTodaySnapshot_RollsYesterdayForward(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	p := f.seedProducts(1)[0]
	f.entry(p.ID, "2024-01-01", "10", "5", "3")

	f.clock.Set("2024-01-02")
	res, err := newSnapshotService(f, nil, nil).EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", res.Day)
	assert.Equal(t, 1, res.Written)

	b, err := newBalanceService(f, nil).ComputeBalance(f.ctx, p.ID, "2024-01-02")
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(b.Opening))
	assert.True(t, b.Increase.IsZero())
	assert.True(t, b.Decrease.IsZero())
	assert.True(t, dec("12").Equal(b.Closing))
}

func TestEnsureTodaySnapshot_NoHistoryStartsAtZero(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	p := f.seedProducts(1)[0]

	_, err := newSnapshotService(f, nil, nil).EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)

	e, err := f.ledger.FindByProductAndDay(f.ctx, p.ID, "2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, e.Qty.IsZero())
}

func TestEnsureTodaySnapshot_BridgesSkippedDays(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	p := f.seedProducts(1)[0]
	f.entry(p.ID, "2024-01-01", "10", "0", "4")

	f.clock.Set("2024-01-09")
	_, err := newSnapshotService(f, nil, nil).EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)

	e, err := f.ledger.FindByProductAndDay(f.ctx, p.ID, "2024-01-09")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, dec("6").Equal(e.Qty))
}

func TestEnsureTodaySnapshot_IdempotentSequential(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	products := f.seedProducts(3)
	svc := newSnapshotService(f, nil, nil)

	first, err := svc.EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Written)

	for i := 0; i < 3; i++ {
		again, err := svc.EnsureTodaySnapshot(f.ctx)
		require.NoError(t, err)
		assert.Zero(t, again.Written)
		assert.Equal(t, 3, again.Existing)
	}
	for _, p := range products {
		assert.EqualValues(t, 1, f.rowsOn(p.ID, "2024-01-02"))
	}
	assert.Equal(t, []string{ws.ActionSnapshotCreated}, f.events.Actions())
}

func TestEnsureTodaySnapshot_IdempotentConcurrent(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	products := f.seedProducts(5)
	for _, p := range products {
		f.entry(p.ID, "2024-01-01", "3", "2", "1")
	}
	f.clock.Set("2024-01-02")

	// separate services, like two processes sharing one store
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		svc := newSnapshotService(f, nil, nil)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureTodaySnapshot(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for _, p := range products {
		assert.EqualValues(t, 1, f.rowsOn(p.ID, "2024-01-02"))
		e, err := f.ledger.FindByProductAndDay(f.ctx, p.ID, "2024-01-02")
		require.NoError(t, err)
		assert.True(t, dec("4").Equal(e.Qty))
	}
}

func TestEnsureTodaySnapshot_LeavesExistingRowsAlone(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	products := f.seedProducts(2)
	f.entry(products[0].ID, "2024-01-01", "10", "0", "0")
	f.entry(products[1].ID, "2024-01-01", "20", "0", "0")
	// partial earlier run: only the first product has today's row, with movements
	f.entry(products[0].ID, "2024-01-02", "10", "7", "1")

	f.clock.Set("2024-01-02")
	res, err := newSnapshotService(f, nil, nil).EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, 1, res.Written)

	kept, err := f.ledger.FindByProductAndDay(f.ctx, products[0].ID, "2024-01-02")
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(kept.Increase))
	assert.True(t, dec("16").Equal(kept.Closing()))

	filled, err := f.ledger.FindByProductAndDay(f.ctx, products[1].ID, "2024-01-02")
	require.NoError(t, err)
	require.NotNil(t, filled)
	assert.True(t, dec("20").Equal(filled.Qty))
}

func TestEnsureTodaySnapshot_RemovesRowsOfDeletedProducts(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	p := f.seedProducts(1)[0]
	ghost := uuid.New()
	f.entry(ghost, "2024-01-02", "5", "0", "0")

	res, err := newSnapshotService(f, nil, nil).EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 1, res.Written)
	assert.EqualValues(t, 0, f.rowsOn(ghost, "2024-01-02"))
	assert.EqualValues(t, 1, f.rowsOn(p.ID, "2024-01-02"))
}

func TestEnsureTodaySnapshot_ContinuesAfterWriteFailure(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	products := f.seedProducts(3)
	ledger := &flakyLedger{LedgerRepository: f.ledger, failUpsert: map[uuid.UUID]bool{products[1].ID: true}}
	svc := newSnapshotService(f, ledger, nil)

	res, err := svc.EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Failed)
	assert.EqualValues(t, 0, f.rowsOn(products[1].ID, "2024-01-02"))

	// a later run fills the gap
	delete(ledger.failUpsert, products[1].ID)
	res, err = svc.EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 2, res.Existing)
	assert.EqualValues(t, 1, f.rowsOn(products[1].ID, "2024-01-02"))
}

func TestEnsureTodaySnapshot_UpfrontFailureIsReturned(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	f.seedProducts(1)
	require.NoError(t, f.mem.Close())

	_, err := newSnapshotService(f, nil, nil).EnsureTodaySnapshot(f.ctx)
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
}

func TestEnsureTodaySnapshot_BusyLockDoesNotBlockCorrectness(t *testing.T) {
	f := newFixture(t, "2024-01-02")
	p := f.seedProducts(1)[0]
	locker := lock.NewLocalLocker()
	release, err := locker.Obtain(f.ctx, "snapshot:2024-01-02", time.Second)
	require.NoError(t, err)
	defer release()

	res, err := newSnapshotService(f, nil, locker).EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.EqualValues(t, 1, f.rowsOn(p.ID, "2024-01-02"))
}

func TestSnapshotRun_WritesOnDayChange(t *testing.T) {
	f := newFixture(t, "2024-01-01")
	p := f.seedProducts(1)[0]
	svc := newSnapshotService(f, nil, lock.NewLocalLocker())

	_, err := svc.EnsureTodaySnapshot(f.ctx)
	require.NoError(t, err)
	_, err = f.ledger.AddMovement(f.ctx, p.ID, "2024-01-01", dec("0"), dec("9"), dec("0"), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	f.clock.Set("2024-01-02")
	assert.Eventually(t, func() bool {
		e, err := f.ledger.FindByProductAndDay(context.Background(), p.ID, "2024-01-02")
		return err == nil && e != nil && e.Qty.Equal(dec("9"))
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
