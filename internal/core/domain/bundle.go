package domain

import (
	"fmt"
	"sync/atomic"
)

// BundleID identifies a bundle for the lifetime of the framework.
type BundleID int64

// SystemBundleID is reserved for the system bundle.
const SystemBundleID BundleID = 0

// Kind is the variant of a bundle.
type Kind uint8

const (
	// KindHost is a regular bundle that can be started and stopped.
	KindHost Kind = iota
	// KindFragment attaches to a host and has no lifecycle of its own.
	KindFragment
	// KindSystem is the framework itself.
	KindSystem
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindFragment:
		return "fragment"
	case KindSystem:
		return "system"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// State is the lifecycle state of a bundle.
type State uint32

const (
	// StateUninstalled is terminal.
	StateUninstalled State = iota
	// StateInstalled means a revision exists but is not wired.
	StateInstalled
	// StateResolved means the current revision is wired into the environment.
	StateResolved
	// StateStarting means the activator is running, or lazy activation is pending.
	StateStarting
	// StateActive means the bundle has been started.
	StateActive
	// StateStopping means the activator stop is running.
	StateStopping
)

// String returns the upper-case state name.
func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "UNINSTALLED"
	case StateInstalled:
		return "INSTALLED"
	case StateResolved:
		return "RESOLVED"
	case StateStarting:
		return "STARTING"
	case StateActive:
		return "ACTIVE"
	case StateStopping:
		return "STOPPING"
	default:
		return fmt.Sprintf("STATE(%d)", uint32(s))
	}
}

var transitions = map[State][]State{
	StateInstalled: {StateResolved, StateUninstalled},
	StateResolved:  {StateInstalled, StateStarting, StateUninstalled},
	StateStarting:  {StateActive, StateStopping, StateResolved},
	StateActive:    {StateStopping},
	StateStopping:  {StateResolved},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Lockable is an entity the lock manager can guard.
type Lockable interface {
	// LockID orders locks canonically. It must be unique per entity.
	LockID() uint64
	String() string
}

// Bundle is an installable unit of modular content.
// Its state is written only by the lifecycle while the bundle lock is held,
// but may be read from any goroutine.
type Bundle struct {
	id           BundleID
	location     string
	symbolicName string
	kind         Kind

	version     atomic.Pointer[Version]
	state       atomic.Uint32
	lazyPending atomic.Bool
	activating  atomic.Bool
	autoStart   atomic.Bool
}

// NewBundle creates a bundle in the INSTALLED state.
func NewBundle(id BundleID, location, symbolicName string, version Version, kind Kind) *Bundle {
	b := &Bundle{
		id:           id,
		location:     location,
		symbolicName: symbolicName,
		kind:         kind,
	}
	b.version.Store(&version)
	b.state.Store(uint32(StateInstalled))
	return b
}

// ID returns the bundle id.
func (b *Bundle) ID() BundleID { return b.id }

// Location returns the location the bundle was installed from.
func (b *Bundle) Location() string { return b.location }

// SymbolicName returns the bundle symbolic name.
func (b *Bundle) SymbolicName() string { return b.symbolicName }

// Version returns the version of the current revision.
func (b *Bundle) Version() Version { return *b.version.Load() }

// SetVersion records the version of a newly installed current revision.
func (b *Bundle) SetVersion(v Version) { b.version.Store(&v) }

// Kind returns the bundle kind.
func (b *Bundle) Kind() Kind { return b.kind }

// IsFragment reports whether the bundle is a fragment.
func (b *Bundle) IsFragment() bool { return b.kind == KindFragment }

// State returns the current lifecycle state.
func (b *Bundle) State() State { return State(b.state.Load()) }

// SetState stores a new state and returns the previous one.
// Callers must hold the bundle lock.
func (b *Bundle) SetState(s State) State { return State(b.state.Swap(uint32(s))) }

// LazyPending reports whether the bundle awaits activation on first use.
func (b *Bundle) LazyPending() bool { return b.lazyPending.Load() }

// SetLazyPending sets the lazy activation flag.
func (b *Bundle) SetLazyPending(v bool) { b.lazyPending.Store(v) }

// BeginActivation marks the bundle as having its activator run.
// It returns false if an activation is already in progress.
func (b *Bundle) BeginActivation() bool { return b.activating.CompareAndSwap(false, true) }

// EndActivation clears the activation marker.
func (b *Bundle) EndActivation() { b.activating.Store(false) }

// IsActivating reports whether the activator is currently running.
func (b *Bundle) IsActivating() bool { return b.activating.Load() }

// AutoStart reports whether the bundle is persistently marked as started.
func (b *Bundle) AutoStart() bool { return b.autoStart.Load() }

// SetAutoStart sets the persistent auto-start flag.
func (b *Bundle) SetAutoStart(v bool) { b.autoStart.Store(v) }

// LockID implements Lockable.
func (b *Bundle) LockID() uint64 { return uint64(b.id) }

// String renders the bundle as name:version[id].
func (b *Bundle) String() string {
	return fmt.Sprintf("%s:%s[%d]", b.symbolicName, b.Version(), b.id)
}
