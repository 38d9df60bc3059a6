package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRefresher holds every refresh until release is closed.
type blockingRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func newBlockingRefresher(err error) *blockingRefresher {
	return &blockingRefresher{release: make(chan struct{}), err: err}
}

func (b *blockingRefresher) Refresh(ctx context.Context) error {
	b.calls.Add(1)
	select {
	case <-b.release:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

func TestGate_SingleFlight(t *testing.T) {
	for _, n := range []int{1, 5, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			r := newBlockingRefresher(nil)
			g := NewGate(r, time.Second)

			var wg sync.WaitGroup
			results := make([]error, n)

			// trigger
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[0] = g.Await(context.Background())
			}()
			waitFor(t, func() bool { return g.State() == Refreshing })

			for i := 1; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i] = g.Await(context.Background())
				}(i)
			}
			waitFor(t, func() bool { return g.Pending() == n-1 })

			close(r.release)
			wg.Wait()

			require.Equal(t, int32(1), r.calls.Load())
			for i, err := range results {
				assert.NoError(t, err, "caller %d", i)
			}
			require.Equal(t, Idle, g.State())
			require.Equal(t, 0, g.Pending())
		})
	}
}

func TestGate_FailureFanOut(t *testing.T) {
	cause := errors.New("refresh token expired")
	r := newBlockingRefresher(cause)
	g := NewGate(r, time.Second)

	const n = 6
	var wg sync.WaitGroup
	results := make([]error, n)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = g.Await(context.Background())
	}()
	waitFor(t, func() bool { return g.State() == Refreshing })
	for i := 1; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Await(context.Background())
		}(i)
	}
	waitFor(t, func() bool { return g.Pending() == n-1 })

	close(r.release)
	wg.Wait()

	require.Equal(t, int32(1), r.calls.Load())
	var first *RefreshError
	require.ErrorAs(t, results[0], &first)
	for _, err := range results {
		require.ErrorIs(t, err, ErrRefreshFailed)
		require.ErrorIs(t, err, cause)
		var re *RefreshError
		require.ErrorAs(t, err, &re)
		require.Same(t, first, re)
	}
	require.Equal(t, Idle, g.State())
}

func TestGate_SequentialRefreshesEachCount(t *testing.T) {
	var calls atomic.Int32
	g := NewGate(RefresherFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}), time.Second)

	require.NoError(t, g.Await(context.Background()))
	require.NoError(t, g.Await(context.Background()))
	require.Equal(t, int32(2), calls.Load())
}

func TestGate_WaiterCancellation(t *testing.T) {
	r := newBlockingRefresher(nil)
	g := NewGate(r, time.Second)

	triggerDone := make(chan error, 1)
	go func() { triggerDone <- g.Await(context.Background()) }()
	waitFor(t, func() bool { return g.State() == Refreshing })

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() { waiterDone <- g.Await(ctx) }()
	waitFor(t, func() bool { return g.Pending() == 1 })

	cancel()
	require.ErrorIs(t, <-waiterDone, context.Canceled)
	require.Equal(t, 0, g.Pending())

	close(r.release)
	require.NoError(t, <-triggerDone)
	require.Equal(t, int32(1), r.calls.Load())
}

func TestGate_TriggerCancellationDoesNotAbortRefresh(t *testing.T) {
	r := newBlockingRefresher(nil)
	g := NewGate(r, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- g.Await(ctx) }()
	waitFor(t, func() bool { return g.State() == Refreshing })

	waiter := make(chan error, 1)
	go func() { waiter <- g.Await(context.Background()) }()
	waitFor(t, func() bool { return g.Pending() == 1 })

	close(r.release)
	require.NoError(t, <-done)
	require.NoError(t, <-waiter)
}

func TestGate_RefreshTimeout(t *testing.T) {
	r := newBlockingRefresher(nil)
	g := NewGate(r, 20*time.Millisecond)

	err := g.Await(context.Background())
	require.ErrorIs(t, err, ErrRefreshFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGate_Do(t *testing.T) {
	var refreshes atomic.Int32
	g := NewGate(RefresherFunc(func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	}), time.Second)

	t.Run("replays once after refresh", func(t *testing.T) {
		refreshes.Store(0)
		attempts := 0
		err := g.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if !IsRetried(ctx) {
				return fmt.Errorf("list services: %w", ErrUnauthorized)
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, attempts)
		require.Equal(t, int32(1), refreshes.Load())
	})

	t.Run("second 401 is returned as is", func(t *testing.T) {
		refreshes.Store(0)
		attempts := 0
		err := g.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return ErrUnauthorized
		})
		require.ErrorIs(t, err, ErrUnauthorized)
		require.Equal(t, 2, attempts)
		require.Equal(t, int32(1), refreshes.Load())
	})

	t.Run("already retried context is not gated", func(t *testing.T) {
		refreshes.Store(0)
		err := g.Do(WithRetried(context.Background()), func(ctx context.Context) error {
			return ErrUnauthorized
		})
		require.ErrorIs(t, err, ErrUnauthorized)
		require.Equal(t, int32(0), refreshes.Load())
		require.Equal(t, 0, g.Pending())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		refreshes.Store(0)
		boom := errors.New("boom")
		err := g.Do(context.Background(), func(ctx context.Context) error { return boom })
		require.ErrorIs(t, err, boom)
		require.Equal(t, int32(0), refreshes.Load())
	})
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "refreshing", Refreshing.String())
}
