package domain

import (
	"fmt"
	"slices"
	"time"
)

// RevisionID identifies a revision across all bundles.
type RevisionID uint64

// Metadata is the declared content of a bundle generation.
type Metadata struct {
	SymbolicName string
	Version      Version
	// FragmentHost names the host symbolic name; empty for non-fragments.
	FragmentHost      string
	FragmentHostRange VersionRange
	// Activator names the activator registered with the runtime; empty means none.
	Activator      string
	LazyActivation bool
	Capabilities   []Capability
	Requirements   []Requirement
}

// Validate checks the metadata carries a usable identity.
func (m Metadata) Validate() error {
	if m.SymbolicName == "" {
		return ErrInvalidMetadata
	}
	return nil
}

// Kind derives the bundle kind from the metadata.
func (m Metadata) Kind() Kind {
	if m.FragmentHost != "" {
		return KindFragment
	}
	return KindHost
}

// Deployment is what a deployment provider hands to the framework for installation.
type Deployment struct {
	Location  string
	Metadata  Metadata
	Checksum  string
	AutoStart bool
}

// StorageState is the persisted record of an installed bundle, keyed by location.
type StorageState struct {
	BundleID     BundleID  `json:"bundle_id"`
	Location     string    `json:"location"`
	AutoStart    bool      `json:"auto_start,omitzero"`
	Generation   int       `json:"generation,omitzero"`
	Checksum     string    `json:"checksum,omitzero"`
	LastModified time.Time `json:"last_modified,omitzero"`
}

// Revision is an immutable generation of a bundle.
type Revision struct {
	id         RevisionID
	generation int
	bundle     *Bundle
	location   string
	checksum   string
	metadata   Metadata
	caps       []Capability
	reqs       []Requirement
}

// NewRevision creates a revision for the bundle. The identity capability, and
// the host capability or requirement, are derived from the metadata.
func NewRevision(id RevisionID, generation int, bundle *Bundle, d Deployment) *Revision {
	md := d.Metadata
	caps := make([]Capability, 0, len(md.Capabilities)+2)
	caps = append(caps, Capability{
		Namespace:  NamespaceIdentity,
		Name:       md.SymbolicName,
		Version:    md.Version,
		Attributes: map[string]string{"type": identityType(md.Kind())},
	})
	reqs := slices.Clone(md.Requirements)

	switch md.Kind() {
	case KindFragment:
		reqs = append(reqs, Requirement{
			Namespace: NamespaceHost,
			Name:      md.FragmentHost,
			Range:     md.FragmentHostRange,
		})
	default:
		caps = append(caps,
			Capability{Namespace: NamespaceHost, Name: md.SymbolicName, Version: md.Version},
			Capability{Namespace: NamespaceBundle, Name: md.SymbolicName, Version: md.Version},
		)
	}
	caps = append(caps, md.Capabilities...)

	md.Capabilities = slices.Clone(md.Capabilities)
	md.Requirements = slices.Clone(md.Requirements)

	return &Revision{
		id:         id,
		generation: generation,
		bundle:     bundle,
		location:   d.Location,
		checksum:   d.Checksum,
		metadata:   md,
		caps:       caps,
		reqs:       reqs,
	}
}

func identityType(k Kind) string {
	if k == KindFragment {
		return "osgi.fragment"
	}
	return "osgi.bundle"
}

// ID returns the global revision id.
func (r *Revision) ID() RevisionID { return r.id }

// Generation returns the per-bundle generation, starting at zero.
func (r *Revision) Generation() int { return r.generation }

// Bundle returns the owning bundle; nil for a detached revision.
func (r *Revision) Bundle() *Bundle { return r.bundle }

// Location returns the location the content was read from.
func (r *Revision) Location() string { return r.location }

// Checksum returns the content checksum.
func (r *Revision) Checksum() string { return r.checksum }

// Metadata returns a copy of the metadata.
func (r *Revision) Metadata() Metadata {
	md := r.metadata
	md.Capabilities = slices.Clone(md.Capabilities)
	md.Requirements = slices.Clone(md.Requirements)
	return md
}

// SymbolicName returns the revision symbolic name.
func (r *Revision) SymbolicName() string { return r.metadata.SymbolicName }

// Version returns the revision version.
func (r *Revision) Version() Version { return r.metadata.Version }

// IsFragment reports whether the revision declares a fragment host.
func (r *Revision) IsFragment() bool { return r.metadata.Kind() == KindFragment }

// Deployment reconstructs the deployment the revision was created from.
func (r *Revision) Deployment() Deployment {
	return Deployment{Location: r.location, Metadata: r.Metadata(), Checksum: r.checksum}
}

// Capabilities implements Resource.
func (r *Revision) Capabilities(ns string) []Capability {
	return filterCapabilities(r.caps, ns)
}

// Requirements implements Resource.
func (r *Revision) Requirements(ns string) []Requirement {
	return filterRequirements(r.reqs, ns)
}

// String renders the revision as name:version#generation.
func (r *Revision) String() string {
	return fmt.Sprintf("%s:%s#%d", r.metadata.SymbolicName, r.metadata.Version, r.generation)
}
