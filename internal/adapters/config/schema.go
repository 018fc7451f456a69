package config

// Kernfile is the structure of the kern.yaml configuration file.
type Kernfile struct {
	LockTimeout    string       `yaml:"lock_timeout"`
	RefreshPolicy  string       `yaml:"refresh_policy"`
	StorageDir     string       `yaml:"storage_dir"`
	SystemPackages []PackageDTO `yaml:"system_packages"`
	Bundles        []BundleDTO  `yaml:"bundles"`
}

// PackageDTO is a package exported by the system bundle.
type PackageDTO struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// BundleDTO is a bundle installed at boot.
type BundleDTO struct {
	Location string `yaml:"location"`
	Start    bool   `yaml:"start"`
	Lazy     bool   `yaml:"lazy"`
}

// Overrides are read from KERN_* environment variables and win over the file.
type Overrides struct {
	LockTimeout   string `envconfig:"LOCK_TIMEOUT"`
	RefreshPolicy string `envconfig:"REFRESH_POLICY"`
	StorageDir    string `envconfig:"STORAGE_DIR"`
}
