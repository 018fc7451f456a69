package lock

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kern/internal/core/domain"
)

var errTimedOut = errors.New("lock wait timed out")

// Context is the handle returned by a lock acquisition.
// It records the locks it acquired itself; locks re-entered from a parent
// context are not recorded and stay held when this context is released.
type Context struct {
	id     uuid.UUID
	method domain.Method
	parent *Context

	mu   sync.Mutex
	held []*entityLock
}

// ID returns the unique id of the lock context.
func (lc *Context) ID() uuid.UUID { return lc.id }

// Method returns the method the context was acquired for.
func (lc *Context) Method() domain.Method { return lc.method }

// Held returns the number of locks this context acquired itself.
func (lc *Context) Held() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.held)
}

// holds reports whether lc or any of its ancestors acquired l.
func (lc *Context) holds(l *entityLock) bool {
	for c := lc; c != nil; c = c.parent {
		c.mu.Lock()
		found := slices.Contains(c.held, l)
		c.mu.Unlock()
		if found {
			return true
		}
	}
	return false
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying the lock context.
func NewContext(ctx context.Context, lc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// Detach returns a copy of ctx that owns no locks. Acquisitions made with it
// wait for the locks held along ctx like any other caller.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, (*Context)(nil))
}

// FromContext returns the lock context bound to ctx, or nil.
func FromContext(ctx context.Context) *Context {
	lc, _ := ctx.Value(contextKey{}).(*Context)
	return lc
}

// entityLock is a single mutual-exclusion slot with a timed acquire.
type entityLock struct {
	name string
	sem  chan struct{}

	mu     sync.Mutex
	holder *Context
}

func newEntityLock(name string) *entityLock {
	return &entityLock{name: name, sem: make(chan struct{}, 1)}
}

func (l *entityLock) acquire(ctx context.Context, lc *Context, timeout <-chan time.Time) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return errTimedOut
	}

	l.mu.Lock()
	l.holder = lc
	l.mu.Unlock()
	return nil
}

// release frees the slot if lc holds it. It never blocks.
func (l *entityLock) release(lc *Context) bool {
	l.mu.Lock()
	if l.holder != lc {
		l.mu.Unlock()
		return false
	}
	l.holder = nil
	l.mu.Unlock()

	select {
	case <-l.sem:
		return true
	default:
		return false
	}
}

func (l *entityLock) holderMethod() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holder == nil {
		return "none"
	}
	return l.holder.method.String()
}
