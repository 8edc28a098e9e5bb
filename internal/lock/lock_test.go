package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Obtain(context.Background(), "snapshot:2024-01-02", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestLocalLocker_TimesOut(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Obtain(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = l.Obtain(context.Background(), "k", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotObtained)

	// other keys are independent
	other, err := l.Obtain(context.Background(), "other", 10*time.Millisecond)
	require.NoError(t, err)
	other()
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Obtain(context.Background(), "k", time.Second)
	require.NoError(t, err)
	release()
	release()

	again, err := l.Obtain(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	again()
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Obtain(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Obtain(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
