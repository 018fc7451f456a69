package domain

import "go.trai.ch/zerr"

var (
	// ErrBundleUninstalled is returned when a lifecycle operation targets an uninstalled bundle.
	ErrBundleUninstalled = zerr.New("bundle already uninstalled")

	// ErrIllegalTransition is returned when a bundle cannot move from its current state to the requested one.
	ErrIllegalTransition = zerr.New("illegal bundle state transition")

	// ErrFragmentStart is returned when attempting to start a fragment bundle.
	ErrFragmentStart = zerr.New("fragment bundles cannot be started")

	// ErrFragmentStop is returned when attempting to stop a fragment bundle.
	ErrFragmentStop = zerr.New("fragment bundles cannot be stopped")

	// ErrSystemBundleUninstall is returned when attempting to uninstall the system bundle.
	ErrSystemBundleUninstall = zerr.New("system bundle cannot be uninstalled")

	// ErrResolutionFailed is returned when the resolver cannot produce a consistent wiring.
	ErrResolutionFailed = zerr.New("bundle resolution failed")

	// ErrUnresolvedRequirement is returned by resolvers when a mandatory requirement has no provider.
	ErrUnresolvedRequirement = zerr.New("unresolved requirement")

	// ErrBundleStart is returned when a bundle could not be started.
	ErrBundleStart = zerr.New("failed to start bundle")

	// ErrBundleStop is returned when a bundle could not be stopped cleanly.
	ErrBundleStop = zerr.New("failed to stop bundle")

	// ErrActivatorFailed is returned when a bundle activator fails.
	ErrActivatorFailed = zerr.New("bundle activator failed")

	// ErrDuplicateBundle is returned when a bundle with the same symbolic name and version is already installed.
	ErrDuplicateBundle = zerr.New("bundle with the same symbolic name and version already installed")

	// ErrBundleNotFound is returned when a bundle is not known to the framework.
	ErrBundleNotFound = zerr.New("bundle not found")

	// ErrNoCurrentRevision is returned when a bundle has no current revision.
	ErrNoCurrentRevision = zerr.New("bundle has no current revision")

	// ErrInvalidMetadata is returned when a deployment carries unusable metadata.
	ErrInvalidMetadata = zerr.New("invalid bundle metadata")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidVersionRange is returned when a version range string cannot be parsed.
	ErrInvalidVersionRange = zerr.New("invalid version range")

	// ErrLockTimeout is returned when a lock cannot be acquired within the configured timeout.
	ErrLockTimeout = zerr.New("timed out acquiring lock")

	// ErrNotBundleResource is returned when a resource handed to the environment is not backed by a bundle.
	ErrNotBundleResource = zerr.New("resource is not backed by a bundle")

	// ErrInvalidWiring is returned when a resolver result references resources outside the request.
	ErrInvalidWiring = zerr.New("resolver returned an invalid wiring")

	// ErrRefreshContent is returned when the backing content of a bundle cannot be reopened during refresh.
	ErrRefreshContent = zerr.New("failed to reopen bundle content")

	// ErrRefreshIdentity is returned when refreshed content names a different symbolic name or version.
	ErrRefreshIdentity = zerr.New("refreshed content changed bundle identity")

	// ErrRefreshNotStarted is returned when a refresh policy is used without InitBundleRefresh.
	ErrRefreshNotStarted = zerr.New("bundle refresh not initialised")

	// ErrUnknownRefreshPolicy is returned when the configured refresh policy is not recognised.
	ErrUnknownRefreshPolicy = zerr.New("unknown refresh policy, expected 'keep' or 'recreate'")

	// ErrSymbolNotFound is returned when a symbol cannot be loaded from a bundle.
	ErrSymbolNotFound = zerr.New("symbol not found")

	// ErrWatchFailed is returned when bundle content cannot be watched for changes.
	ErrWatchFailed = zerr.New("failed to watch bundle content")

	// ErrContentReadFailed is returned when deployment content cannot be read.
	ErrContentReadFailed = zerr.New("failed to read bundle content")

	// ErrDescriptorParseFailed is returned when a bundle descriptor cannot be parsed.
	ErrDescriptorParseFailed = zerr.New("failed to parse bundle descriptor")

	// ErrStorageReadFailed is returned when a storage state record cannot be read.
	ErrStorageReadFailed = zerr.New("failed to read storage state")

	// ErrStorageWriteFailed is returned when a storage state record cannot be written.
	ErrStorageWriteFailed = zerr.New("failed to write storage state")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFrameworkBootFailed is returned when the framework could not be brought up from the config.
	ErrFrameworkBootFailed = zerr.New("framework boot failed")
)
