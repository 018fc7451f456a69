// Package lock implements the framework lock manager: a framework-wide wiring
// lock plus one lock per lockable entity, always acquired as an ordered set.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

// frameworkLockID sorts before every entity lock.
const frameworkLockID = "framework"

// Manager hands out lock contexts over the framework wiring lock and per-entity locks.
type Manager struct {
	timeout   time.Duration
	logger    ports.Logger
	framework *entityLock

	mu    sync.Mutex
	locks map[uint64]*entityLock
}

// NewManager creates a Manager whose acquisitions wait at most timeout.
// A non-positive timeout falls back to domain.DefaultLockTimeout.
func NewManager(timeout time.Duration, logger ports.Logger) *Manager {
	if timeout <= 0 {
		timeout = domain.DefaultLockTimeout
	}
	return &Manager{
		timeout:   timeout,
		logger:    logger,
		framework: newEntityLock(frameworkLockID),
		locks:     make(map[uint64]*entityLock),
	}
}

// Timeout returns the bounded wait applied to each acquisition.
func (m *Manager) Timeout() time.Duration {
	return m.timeout
}

// LockItems acquires the framework wiring lock and then the lock of every item,
// in ascending LockID order, tagging each with method. The returned context
// carries the lock context so nested calls re-enter instead of deadlocking.
//
// Re-entry is scoped to the context, not the goroutine, and ignores method:
// any call made with a descendant of the returned context skips the locks it
// already holds, so an uninstall may stop and a start may resolve. A goroutine
// handed that context shares the ownership too; work that may outlive the
// holder must run on Detach(ctx).
func (m *Manager) LockItems(
	ctx context.Context,
	method domain.Method,
	items ...domain.Lockable,
) (context.Context, *Context, error) {
	return m.acquire(ctx, method, true, items)
}

// LockEntities is LockItems without the framework wiring lock, for operations
// that do not touch the environment.
func (m *Manager) LockEntities(
	ctx context.Context,
	method domain.Method,
	items ...domain.Lockable,
) (context.Context, *Context, error) {
	return m.acquire(ctx, method, false, items)
}

// UnlockItems releases, in reverse acquisition order, every lock the context acquired.
// A nil or partially filled context is accepted.
func (m *Manager) UnlockItems(lc *Context) {
	if lc == nil {
		return
	}
	lc.mu.Lock()
	held := lc.held
	lc.held = nil
	lc.mu.Unlock()

	for i := len(held) - 1; i >= 0; i-- {
		if !held[i].release(lc) {
			m.logger.Warn(fmt.Sprintf("lock %s was not held by context %s", held[i].name, lc.id))
		}
	}
}

func (m *Manager) acquire(
	ctx context.Context,
	method domain.Method,
	withFramework bool,
	items []domain.Lockable,
) (context.Context, *Context, error) {
	parent := FromContext(ctx)
	lc := &Context{
		id:     uuid.New(),
		method: method,
		parent: parent,
	}

	ordered := m.orderedLocks(withFramework, items)

	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()

	for _, l := range ordered {
		if parent.holds(l) {
			continue
		}
		if err := l.acquire(ctx, lc, deadline.C); err != nil {
			m.UnlockItems(lc)
			return ctx, nil, m.acquireError(err, method, l)
		}
		lc.mu.Lock()
		lc.held = append(lc.held, l)
		lc.mu.Unlock()
	}

	return NewContext(ctx, lc), lc, nil
}

// orderedLocks returns the framework lock (if requested) followed by the
// entity locks sorted by id, without duplicates.
func (m *Manager) orderedLocks(withFramework bool, items []domain.Lockable) []*entityLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint64, 0, len(items))
	names := make(map[uint64]string, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		id := item.LockID()
		if _, seen := names[id]; !seen {
			ids = append(ids, id)
			names[id] = item.String()
		}
	}
	slices.Sort(ids)

	ordered := make([]*entityLock, 0, len(ids)+1)
	if withFramework {
		ordered = append(ordered, m.framework)
	}
	for _, id := range ids {
		l, ok := m.locks[id]
		if !ok {
			l = newEntityLock(names[id])
			m.locks[id] = l
		}
		ordered = append(ordered, l)
	}
	return ordered
}

func (m *Manager) acquireError(err error, method domain.Method, l *entityLock) error {
	if !errors.Is(err, errTimedOut) {
		return zerr.With(zerr.Wrap(err, "lock acquisition cancelled"), "item", l.name)
	}

	holder := l.holderMethod()
	m.logger.Warn(fmt.Sprintf("timed out after %s waiting for lock %s (held by %s)", m.timeout, l.name, holder))

	var wrapped error = zerr.Wrap(domain.ErrLockTimeout, "lock acquisition failed")
	wrapped = zerr.With(wrapped, "method", method.String())
	wrapped = zerr.With(wrapped, "item", l.name)
	wrapped = zerr.With(wrapped, "holder_method", holder)
	return zerr.With(wrapped, "timeout", m.timeout.String())
}
