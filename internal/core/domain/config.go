package domain

import "time"

// Refresh policy names accepted in the configuration.
const (
	RefreshPolicyKeep     = "keep"
	RefreshPolicyRecreate = "recreate"
)

// DefaultLockTimeout bounds every lock acquisition unless configured otherwise.
const DefaultLockTimeout = 30 * time.Second

// DefaultStorageDir is where storage state records are kept.
const DefaultStorageDir = ".kern/storage"

// FrameworkConfig configures a framework instance.
type FrameworkConfig struct {
	LockTimeout    time.Duration
	RefreshPolicy  string
	StorageDir     string
	SystemPackages []Capability
	Bundles        []BundleEntry
}

// BundleEntry is a bundle the framework installs at boot.
type BundleEntry struct {
	Location string
	Start    bool
	// Lazy starts the bundle with its declared activation policy.
	Lazy bool
}

// DefaultFrameworkConfig returns a configuration with defaults filled in.
func DefaultFrameworkConfig() *FrameworkConfig {
	return &FrameworkConfig{
		LockTimeout:   DefaultLockTimeout,
		RefreshPolicy: RefreshPolicyRecreate,
		StorageDir:    DefaultStorageDir,
	}
}
