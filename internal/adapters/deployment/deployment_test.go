package deployment_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/internal/adapters/deployment"
	"go.trai.ch/kern/internal/core/domain"
)

const descriptorA = `
symbolic_name: a
version: 1.0.0
activator: log
lazy: true
exports: [{name: a.api, version: 1.0.0}]
imports: [{name: b.api, range: "[1.0,2.0)"}, {name: c.api, optional: true}]
requires: [{name: b, range: "1.0"}]
capabilities: [{namespace: x, name: y, version: 2.0.0, attributes: {k: v}}]
`

func TestProvider_CreateDeployment(t *testing.T) {
	p, err := deployment.NewProvider(8)
	require.NoError(t, err)

	d, err := p.CreateDeployment(context.Background(), "mem:a", strings.NewReader(descriptorA))
	require.NoError(t, err)

	md := d.Metadata
	assert.Equal(t, "mem:a", d.Location)
	assert.Len(t, d.Checksum, 16)
	assert.Equal(t, "a", md.SymbolicName)
	assert.Equal(t, "1.0.0", md.Version.String())
	assert.Equal(t, "log", md.Activator)
	assert.True(t, md.LazyActivation)
	assert.Equal(t, domain.KindHost, md.Kind())

	require.Len(t, md.Capabilities, 2)
	assert.Equal(t, domain.NamespacePackage, md.Capabilities[0].Namespace)
	assert.Equal(t, map[string]string{"k": "v"}, md.Capabilities[1].Attributes)

	require.Len(t, md.Requirements, 3)
	assert.Equal(t, domain.NamespacePackage, md.Requirements[0].Namespace)
	assert.False(t, md.Requirements[0].Range.Includes(domain.MustParseVersion("2.0.0")))
	assert.True(t, md.Requirements[1].Optional)
	assert.Equal(t, domain.NamespaceBundle, md.Requirements[2].Namespace)
}

func TestProvider_ChecksumStableAcrossCache(t *testing.T) {
	p, err := deployment.NewProvider(8)
	require.NoError(t, err)

	first, err := p.CreateDeployment(context.Background(), "mem:a", strings.NewReader(descriptorA))
	require.NoError(t, err)
	second, err := p.CreateDeployment(context.Background(), "mem:other", strings.NewReader(descriptorA))
	require.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
	assert.Equal(t, first.Metadata, second.Metadata)
	assert.Equal(t, "mem:other", second.Location)

	changed, err := p.CreateDeployment(context.Background(), "mem:a", strings.NewReader(descriptorA+"\n# edited\n"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Checksum, changed.Checksum)
}

func TestProvider_Fragment(t *testing.T) {
	p, err := deployment.NewProvider(8)
	require.NoError(t, err)

	d, err := p.CreateDeployment(context.Background(), "mem:f", strings.NewReader(`
symbolic_name: f
version: 1.0.0
fragment_host: h
fragment_host_range: "[1.0,2.0)"
`))
	require.NoError(t, err)
	assert.Equal(t, domain.KindFragment, d.Metadata.Kind())
	assert.Equal(t, "h", d.Metadata.FragmentHost)
}

func TestProvider_Invalid(t *testing.T) {
	p, err := deployment.NewProvider(8)
	require.NoError(t, err)

	for name, content := range map[string]string{
		"no name":       "version: 1.0.0",
		"bad version":   "symbolic_name: a\nversion: one",
		"bad range":     "symbolic_name: a\nimports: [{name: b, range: \"[2.0,1.0]\"}]",
		"unknown field": "symbolic_name: a\nsurprise: true",
		"not yaml":      "symbolic_name: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.CreateDeployment(context.Background(), "mem:x", strings.NewReader(content))
			require.ErrorIs(t, err, domain.ErrDescriptorParseFailed)
		})
	}
}

func TestProvider_OpenAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte(descriptorA), 0o600))

	p, err := deployment.NewProvider(8)
	require.NoError(t, err)

	rc, err := p.Open(context.Background(), deployment.FileScheme+path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, descriptorA, string(data))

	d, err := p.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "a", d.Metadata.SymbolicName)

	_, err = p.Open(context.Background(), filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, domain.ErrContentReadFailed)
}

func TestStore_SaveLoadDelete(t *testing.T) {
	s := deployment.NewStore(filepath.Join(t.TempDir(), "storage"))

	st, err := s.Load("bundles/a.yaml")
	require.NoError(t, err)
	assert.Nil(t, st, "missing record")

	want := domain.StorageState{
		BundleID:     4,
		Location:     "bundles/a.yaml",
		AutoStart:    true,
		Generation:   2,
		Checksum:     "00000000deadbeef",
		LastModified: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load("bundles/a.yaml")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.BundleID, got.BundleID)
	assert.True(t, want.LastModified.Equal(got.LastModified))
	assert.Equal(t, want.Generation, got.Generation)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file renamed away")

	require.NoError(t, s.Delete("bundles/a.yaml"))
	require.NoError(t, s.Delete("bundles/a.yaml"))
	got, err = s.Load("bundles/a.yaml")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CorruptRecord(t *testing.T) {
	s := deployment.NewStore(t.TempDir())
	require.NoError(t, s.Save(domain.StorageState{BundleID: 1, Location: "x"}))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), entries[0].Name()), []byte("{"), 0o600))

	_, err = s.Load("x")
	require.ErrorIs(t, err, domain.ErrStorageReadFailed)
}
