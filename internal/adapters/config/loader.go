// Package config loads the framework configuration from kern.yaml.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the config file looked up when none is given.
const DefaultFilename = "kern.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "kern"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{Logger: log}
}

// Load reads the file at path, applies environment overrides and fills in
// defaults. A missing file is not an error. Relative bundle locations and the
// storage directory are taken relative to the file's directory.
func (l *Loader) Load(path string) (*domain.FrameworkConfig, error) {
	if path == "" {
		path = DefaultFilename
	}

	var kf Kernfile
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.Logger.Warn("no " + filepath.Base(path) + " found, using defaults")
	case err != nil:
		return nil, zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	default:
		if err := yaml.Unmarshal(data, &kf); err != nil {
			return nil, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", path)
		}
	}

	var o Overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), "read environment overrides")
	}
	applyOverrides(&kf, o)

	return build(kf, filepath.Dir(path))
}

func applyOverrides(kf *Kernfile, o Overrides) {
	if o.LockTimeout != "" {
		kf.LockTimeout = o.LockTimeout
	}
	if o.RefreshPolicy != "" {
		kf.RefreshPolicy = o.RefreshPolicy
	}
	if o.StorageDir != "" {
		kf.StorageDir = o.StorageDir
	}
}

func build(kf Kernfile, dir string) (*domain.FrameworkConfig, error) {
	cfg := domain.DefaultFrameworkConfig()

	if kf.LockTimeout != "" {
		d, err := time.ParseDuration(kf.LockTimeout)
		if err != nil || d <= 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid lock_timeout"), "lock_timeout", kf.LockTimeout)
		}
		cfg.LockTimeout = d
	}

	switch kf.RefreshPolicy {
	case "":
	case domain.RefreshPolicyKeep, domain.RefreshPolicyRecreate:
		cfg.RefreshPolicy = kf.RefreshPolicy
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownRefreshPolicy, "load config"), "refresh_policy", kf.RefreshPolicy)
	}

	if kf.StorageDir != "" {
		cfg.StorageDir = kf.StorageDir
	}
	cfg.StorageDir = relativeTo(dir, cfg.StorageDir)

	for _, p := range kf.SystemPackages {
		if p.Name == "" {
			return nil, zerr.Wrap(domain.ErrConfigParseFailed, "system package without name")
		}
		v, err := domain.ParseVersion(p.Version)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "parse system package version"), "package", p.Name)
		}
		cfg.SystemPackages = append(cfg.SystemPackages, domain.Capability{
			Namespace: domain.NamespacePackage,
			Name:      p.Name,
			Version:   v,
		})
	}

	for _, b := range kf.Bundles {
		if b.Location == "" {
			return nil, zerr.Wrap(domain.ErrConfigParseFailed, "bundle without location")
		}
		cfg.Bundles = append(cfg.Bundles, domain.BundleEntry{
			Location: relativeTo(dir, b.Location),
			Start:    b.Start,
			Lazy:     b.Lazy,
		})
	}
	return cfg, nil
}

func relativeTo(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
