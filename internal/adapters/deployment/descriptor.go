package deployment

import (
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/zerr"
)

// Descriptor is the YAML form of a bundle's metadata.
type Descriptor struct {
	SymbolicName      string          `yaml:"symbolic_name"`
	Version           string          `yaml:"version"`
	FragmentHost      string          `yaml:"fragment_host"`
	FragmentHostRange string          `yaml:"fragment_host_range"`
	Activator         string          `yaml:"activator"`
	Lazy              bool            `yaml:"lazy"`
	Exports           []ExportDTO     `yaml:"exports"`
	Imports           []ImportDTO     `yaml:"imports"`
	Requires          []ImportDTO     `yaml:"requires"`
	Capabilities      []CapabilityDTO `yaml:"capabilities"`
}

// ExportDTO is an exported package.
type ExportDTO struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ImportDTO is an imported package or a required bundle.
type ImportDTO struct {
	Name     string `yaml:"name"`
	Range    string `yaml:"range"`
	Optional bool   `yaml:"optional"`
}

// CapabilityDTO is a generic capability in an arbitrary namespace.
type CapabilityDTO struct {
	Namespace  string            `yaml:"namespace"`
	Name       string            `yaml:"name"`
	Version    string            `yaml:"version"`
	Attributes map[string]string `yaml:"attributes"`
}

// Metadata converts the descriptor into domain metadata.
func (d Descriptor) Metadata() (domain.Metadata, error) {
	if d.SymbolicName == "" {
		return domain.Metadata{}, zerr.Wrap(domain.ErrInvalidMetadata, "descriptor has no symbolic_name")
	}
	v, err := domain.ParseVersion(d.Version)
	if err != nil {
		return domain.Metadata{}, err
	}
	hostRange, err := domain.ParseVersionRange(d.FragmentHostRange)
	if err != nil {
		return domain.Metadata{}, err
	}

	md := domain.Metadata{
		SymbolicName:      d.SymbolicName,
		Version:           v,
		FragmentHost:      d.FragmentHost,
		FragmentHostRange: hostRange,
		Activator:         d.Activator,
		LazyActivation:    d.Lazy,
	}

	for _, e := range d.Exports {
		ev, err := domain.ParseVersion(e.Version)
		if err != nil {
			return domain.Metadata{}, zerr.With(zerr.Wrap(err, "parse export"), "package", e.Name)
		}
		md.Capabilities = append(md.Capabilities, domain.Capability{
			Namespace: domain.NamespacePackage,
			Name:      e.Name,
			Version:   ev,
		})
	}
	for _, c := range d.Capabilities {
		cv, err := domain.ParseVersion(c.Version)
		if err != nil {
			return domain.Metadata{}, zerr.With(zerr.Wrap(err, "parse capability"), "name", c.Name)
		}
		md.Capabilities = append(md.Capabilities, domain.Capability{
			Namespace:  c.Namespace,
			Name:       c.Name,
			Version:    cv,
			Attributes: c.Attributes,
		})
	}

	imports, err := requirements(domain.NamespacePackage, d.Imports)
	if err != nil {
		return domain.Metadata{}, err
	}
	requires, err := requirements(domain.NamespaceBundle, d.Requires)
	if err != nil {
		return domain.Metadata{}, err
	}
	md.Requirements = append(imports, requires...)
	return md, nil
}

func requirements(ns string, in []ImportDTO) ([]domain.Requirement, error) {
	out := make([]domain.Requirement, 0, len(in))
	for _, i := range in {
		r, err := domain.ParseVersionRange(i.Range)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "parse requirement"), "name", i.Name)
		}
		out = append(out, domain.Requirement{Namespace: ns, Name: i.Name, Range: r, Optional: i.Optional})
	}
	return out, nil
}
