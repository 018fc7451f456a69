// Package deployment reads bundle descriptors from disk and persists storage
// state records.
package deployment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultCacheSize bounds the number of parsed descriptors kept in memory.
const DefaultCacheSize = 256

// FileScheme is an optional location prefix for descriptor files.
const FileScheme = "file:"

var _ ports.DeploymentProvider = (*Provider)(nil)

// Provider implements ports.DeploymentProvider over YAML descriptor files.
// Parsed metadata is cached by content checksum.
type Provider struct {
	cache *lru.Cache[uint64, domain.Metadata]
}

// NewProvider creates a Provider caching up to size parsed descriptors.
func NewProvider(size int) (*Provider, error) {
	cache, err := lru.New[uint64, domain.Metadata](size)
	if err != nil {
		return nil, zerr.Wrap(err, "create descriptor cache")
	}
	return &Provider{cache: cache}, nil
}

// Open implements ports.DeploymentProvider.
func (p *Provider) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(strings.TrimPrefix(location, FileScheme)) //nolint:gosec // location is provided by user
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrContentReadFailed, err), "location", location)
	}
	return f, nil
}

// CreateDeployment implements ports.DeploymentProvider.
func (p *Provider) CreateDeployment(ctx context.Context, location string, content io.Reader) (domain.Deployment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Deployment{}, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return domain.Deployment{}, zerr.With(errors.Join(domain.ErrContentReadFailed, err), "location", location)
	}

	sum := xxhash.Sum64(data)
	md, ok := p.cache.Get(sum)
	if !ok {
		md, err = parse(data)
		if err != nil {
			return domain.Deployment{}, zerr.With(err, "location", location)
		}
		p.cache.Add(sum, md)
	}

	return domain.Deployment{
		Location: location,
		Metadata: md,
		Checksum: fmt.Sprintf("%016x", sum),
	}, nil
}

// Load opens location and builds its deployment.
func (p *Provider) Load(ctx context.Context, location string) (domain.Deployment, error) {
	rc, err := p.Open(ctx, location)
	if err != nil {
		return domain.Deployment{}, err
	}
	defer func() { _ = rc.Close() }()
	return p.CreateDeployment(ctx, location, rc)
}

func parse(data []byte) (domain.Metadata, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return domain.Metadata{}, errors.Join(domain.ErrDescriptorParseFailed, err)
	}
	md, err := d.Metadata()
	if err != nil {
		return domain.Metadata{}, errors.Join(domain.ErrDescriptorParseFailed, err)
	}
	return md, nil
}
