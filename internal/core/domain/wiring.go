package domain

import "slices"

// Wire links a requirement of one resource to a capability of another.
type Wire struct {
	Requirer    Resource
	Requirement Requirement
	Provider    Resource
	Capability  Capability
}

// Wiring is the resolved state of a single resource. It is replaced wholesale, never mutated.
type Wiring interface {
	// Resource returns the wired resource.
	Resource() Resource
	// RequiredWires returns the outgoing wires in the namespace, or all when ns is empty.
	RequiredWires(ns string) []Wire
	// ProvidedWires returns the incoming wires in the namespace, or all when ns is empty.
	ProvidedWires(ns string) []Wire
}

type wireSet struct {
	required []Wire
	provided []Wire
}

func (w wireSet) RequiredWires(ns string) []Wire { return filterWires(w.required, ns) }

func (w wireSet) ProvidedWires(ns string) []Wire { return filterWires(w.provided, ns) }

func filterWires(wires []Wire, ns string) []Wire {
	out := make([]Wire, 0, len(wires))
	for _, w := range wires {
		if ns == "" || w.Requirement.Namespace == ns {
			out = append(out, w)
		}
	}
	return out
}

// ResourceWiring is the wiring of a resource that is not a bundle revision.
type ResourceWiring struct {
	wireSet
	resource Resource
}

// NewResourceWiring builds a wiring for a plain resource.
func NewResourceWiring(r Resource, required, provided []Wire) *ResourceWiring {
	return &ResourceWiring{
		wireSet:  wireSet{required: slices.Clone(required), provided: slices.Clone(provided)},
		resource: r,
	}
}

// Resource implements Wiring.
func (w *ResourceWiring) Resource() Resource { return w.resource }

// BundleWiring is the wiring of a bundle revision, including attached fragments.
type BundleWiring struct {
	wireSet
	revision  *Revision
	fragments []*Revision
}

// NewBundleWiring builds a wiring for a revision. Fragments are derived from provided host wires.
func NewBundleWiring(rev *Revision, required, provided []Wire) *BundleWiring {
	var fragments []*Revision
	for _, w := range provided {
		if w.Requirement.Namespace != NamespaceHost {
			continue
		}
		if frag, ok := w.Requirer.(*Revision); ok {
			fragments = append(fragments, frag)
		}
	}
	return &BundleWiring{
		wireSet:   wireSet{required: slices.Clone(required), provided: slices.Clone(provided)},
		revision:  rev,
		fragments: fragments,
	}
}

// Resource implements Wiring.
func (w *BundleWiring) Resource() Resource { return w.revision }

// Revision returns the wired revision.
func (w *BundleWiring) Revision() *Revision { return w.revision }

// Fragments returns the fragment revisions attached to this host wiring.
func (w *BundleWiring) Fragments() []*Revision { return slices.Clone(w.fragments) }

// Capabilities returns the host capabilities plus those contributed by attached fragments.
func (w *BundleWiring) Capabilities(ns string) []Capability {
	caps := w.revision.Capabilities(ns)
	for _, frag := range w.fragments {
		for _, c := range frag.Capabilities(ns) {
			if c.Namespace == NamespaceIdentity {
				continue
			}
			caps = append(caps, c)
		}
	}
	return caps
}
