package lock_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports/mocks"
	"go.trai.ch/kern/internal/engine/lock"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

type item uint64

func (i item) LockID() uint64  { return uint64(i) }
func (i item) String() string { return fmt.Sprintf("item-%d", uint64(i)) }

func newManager(t *testing.T, timeout time.Duration) *lock.Manager {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return lock.NewManager(timeout, log)
}

func TestManager_LockItemsAndUnlock(t *testing.T) {
	m := newManager(t, time.Second)

	ctx, lc, err := m.LockItems(context.Background(), domain.MethodInstall, item(2), item(1), item(2))
	require.NoError(t, err)
	require.NotNil(t, lc)

	// framework lock plus two distinct items
	assert.Equal(t, 3, lc.Held())
	assert.Equal(t, domain.MethodInstall, lc.Method())
	assert.Same(t, lc, lock.FromContext(ctx))

	m.UnlockItems(lc)
	assert.Equal(t, 0, lc.Held())

	// Everything must be free again.
	_, lc2, err := m.LockItems(context.Background(), domain.MethodResolve, item(1), item(2))
	require.NoError(t, err)
	m.UnlockItems(lc2)
}

func TestManager_UnlockItems_NilAndTwice(t *testing.T) {
	m := newManager(t, time.Second)

	assert.NotPanics(t, func() { m.UnlockItems(nil) })

	_, lc, err := m.LockItems(context.Background(), domain.MethodInstall, item(1))
	require.NoError(t, err)
	m.UnlockItems(lc)
	assert.NotPanics(t, func() { m.UnlockItems(lc) })
}

func TestManager_Reentrant(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newManager(t, time.Second)

		outerCtx, outer, err := m.LockItems(context.Background(), domain.MethodUninstall, item(1))
		require.NoError(t, err)

		innerCtx, inner, err := m.LockItems(outerCtx, domain.MethodStop, item(1), item(2))
		require.NoError(t, err)
		// Only item 2 is new; framework and item 1 are re-entered.
		assert.Equal(t, 1, inner.Held())
		assert.Same(t, inner, lock.FromContext(innerCtx))

		m.UnlockItems(inner)

		// Item 1 must still be held by the outer context.
		_, _, err = m.LockEntities(context.Background(), domain.MethodStart, item(1))
		require.ErrorIs(t, err, domain.ErrLockTimeout)

		// Item 2 was released with the inner context.
		_, lc, err := m.LockEntities(context.Background(), domain.MethodStart, item(2))
		require.NoError(t, err)
		m.UnlockItems(lc)

		m.UnlockItems(outer)
	})
}

func TestManager_DetachDropsOwnership(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newManager(t, time.Second)

		ctx, outer, err := m.LockItems(context.Background(), domain.MethodStart, item(1))
		require.NoError(t, err)

		detached := lock.Detach(ctx)
		assert.Nil(t, lock.FromContext(detached))
		_, _, err = m.LockEntities(detached, domain.MethodStart, item(1))
		require.ErrorIs(t, err, domain.ErrLockTimeout)

		// The original context still re-enters.
		_, inner, err := m.LockEntities(ctx, domain.MethodStart, item(1))
		require.NoError(t, err)
		assert.Equal(t, 0, inner.Held())
		m.UnlockItems(inner)

		m.UnlockItems(outer)
	})
}

func TestManager_Timeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newManager(t, 30*time.Second)

		_, holder, err := m.LockEntities(context.Background(), domain.MethodResolve, item(3))
		require.NoError(t, err)

		start := time.Now()
		_, lc, err := m.LockItems(context.Background(), domain.MethodInstall, item(1), item(3))
		require.ErrorIs(t, err, domain.ErrLockTimeout)
		assert.Nil(t, lc)
		assert.Equal(t, 30*time.Second, time.Since(start))

		// The framework lock and item 1 were rolled back.
		_, lc, err = m.LockItems(context.Background(), domain.MethodInstall, item(1))
		require.NoError(t, err)
		m.UnlockItems(lc)

		m.UnlockItems(holder)
	})
}

func TestManager_WaitsForRelease(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newManager(t, 30*time.Second)

		_, holder, err := m.LockItems(context.Background(), domain.MethodInstall, item(1))
		require.NoError(t, err)

		acquired := make(chan error, 1)
		go func() {
			_, lc, err := m.LockItems(context.Background(), domain.MethodUninstall, item(1))
			if err == nil {
				m.UnlockItems(lc)
			}
			acquired <- err
		}()

		synctest.Wait()
		select {
		case <-acquired:
			t.Fatal("second acquisition should block while the first is held")
		default:
		}

		time.Sleep(5 * time.Second)
		m.UnlockItems(holder)

		require.NoError(t, <-acquired)
	})
}

func TestManager_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newManager(t, time.Minute)

		_, holder, err := m.LockItems(context.Background(), domain.MethodInstall)
		require.NoError(t, err)
		defer m.UnlockItems(holder)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, _, err = m.LockItems(ctx, domain.MethodResolve, item(1))
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, domain.ErrLockTimeout)
	})
}

func TestManager_Stress_NoDeadlock(t *testing.T) {
	const (
		workers    = 16
		bundles    = 6
		iterations = 200
	)

	m := newManager(t, 5*time.Second)
	owners := make([]atomic.Int32, bundles)

	done := make(chan error, 1)
	go func() {
		g, ctx := errgroup.WithContext(context.Background())
		for w := range workers {
			g.Go(func() error {
				r := rand.New(rand.NewPCG(uint64(w), 42))
				for range iterations {
					subset := make([]domain.Lockable, 0, bundles)
					for b := range bundles {
						if r.IntN(2) == 0 {
							subset = append(subset, item(b))
						}
					}

					lockFn := m.LockItems
					if r.IntN(3) == 0 {
						lockFn = m.LockEntities
					}
					method := domain.MethodInstall
					if r.IntN(2) == 0 {
						method = domain.MethodUninstall
					}

					_, lc, err := lockFn(ctx, method, subset...)
					if err != nil {
						return err
					}
					for _, it := range subset {
						if owners[it.(item)].Add(1) != 1 {
							m.UnlockItems(lc)
							return fmt.Errorf("%s held by two contexts", it)
						}
					}
					for _, it := range subset {
						owners[it.(item)].Add(-1)
					}
					m.UnlockItems(lc)
				}
				return nil
			})
		}
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(30 * time.Second):
		t.Fatal("lock stress test did not complete")
	}
	for b := range owners {
		assert.Equal(t, int32(0), owners[b].Load())
	}
}
