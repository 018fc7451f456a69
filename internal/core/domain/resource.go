package domain

import "maps"

// Well-known capability namespaces.
const (
	NamespaceIdentity = "osgi.identity"
	NamespacePackage  = "osgi.wiring.package"
	NamespaceBundle   = "osgi.wiring.bundle"
	NamespaceHost     = "osgi.wiring.host"
)

// Capability is a "provides" facet of a resource.
type Capability struct {
	Namespace  string
	Name       string
	Version    Version
	Attributes map[string]string
}

// Requirement is a "needs" facet of a resource.
type Requirement struct {
	Namespace string
	Name      string
	Range     VersionRange
	Optional  bool
}

// Matches reports whether the capability satisfies the requirement.
func (r Requirement) Matches(c Capability) bool {
	return r.Namespace == c.Namespace && r.Name == c.Name && r.Range.Includes(c.Version)
}

// String renders the requirement for error messages.
func (r Requirement) String() string {
	return r.Namespace + ":" + r.Name + ";" + r.Range.String()
}

// Resource is anything that can be installed into the environment and resolved.
type Resource interface {
	// Capabilities returns the capabilities in the given namespace, or all of them when ns is empty.
	Capabilities(ns string) []Capability
	// Requirements returns the requirements in the given namespace, or all of them when ns is empty.
	Requirements(ns string) []Requirement
}

// PlainResource is a resource that is not backed by a bundle.
type PlainResource struct {
	Caps []Capability
	Reqs []Requirement
}

// Capabilities implements Resource.
func (p *PlainResource) Capabilities(ns string) []Capability {
	return filterCapabilities(p.Caps, ns)
}

// Requirements implements Resource.
func (p *PlainResource) Requirements(ns string) []Requirement {
	return filterRequirements(p.Reqs, ns)
}

func filterCapabilities(caps []Capability, ns string) []Capability {
	out := make([]Capability, 0, len(caps))
	for _, c := range caps {
		if ns == "" || c.Namespace == ns {
			c.Attributes = maps.Clone(c.Attributes)
			out = append(out, c)
		}
	}
	return out
}

func filterRequirements(reqs []Requirement, ns string) []Requirement {
	out := make([]Requirement, 0, len(reqs))
	for _, r := range reqs {
		if ns == "" || r.Namespace == ns {
			out = append(out, r)
		}
	}
	return out
}
