package commands_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/cmd/kern/commands"
	"go.trai.ch/kern/internal/adapters/resolver"
	"go.trai.ch/kern/internal/adapters/runtime"
	"go.trai.ch/kern/internal/adapters/telemetry"
	"go.trai.ch/kern/internal/app"
	"go.trai.ch/kern/internal/build"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newCLI(t *testing.T) (*commands.CLI, *mocks.MockConfigLoader) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	loader := mocks.NewMockConfigLoader(ctrl)
	deployments := mocks.NewMockDeploymentProvider(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	storage := mocks.NewMockStorageProvider(ctrl)
	storage.EXPECT().Load(gomock.Any()).Return(nil, nil).AnyTimes()
	storage.EXPECT().Save(gomock.Any()).Return(nil).AnyTimes()

	registry := runtime.New()
	a := app.New(loader, deployments, resolver.New(), registry, registry,
		func(string) ports.StorageProvider { return storage }, log, telemetry.NewNoOpTracer())
	return commands.New(a), loader
}

func emptyConfig(t *testing.T) *domain.FrameworkConfig {
	cfg := domain.DefaultFrameworkConfig()
	cfg.LockTimeout = time.Second
	cfg.StorageDir = filepath.Join(t.TempDir(), "storage")
	cfg.SystemPackages = []domain.Capability{{
		Namespace: domain.NamespacePackage,
		Name:      "kern.api",
		Version:   domain.MustParseVersion("1.0.0"),
	}}
	return cfg
}

func TestRun_Once(t *testing.T) {
	cli, loader := newCLI(t)
	loader.EXPECT().Load("custom.yaml").Return(emptyConfig(t), nil)

	cli.SetArgs([]string{"run", "--once", "-c", "custom.yaml"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "custom.yaml", cli.GetConfigPath())
}

func TestRun_RejectsArgs(t *testing.T) {
	cli, _ := newCLI(t)
	cli.SetArgs([]string{"run", "extra"})
	require.Error(t, cli.Execute(context.Background()))
}

func TestRun_ConfigError(t *testing.T) {
	cli, loader := newCLI(t)
	boom := errors.New("boom")
	loader.EXPECT().Load("kern.yaml").Return(nil, boom)

	cli.SetArgs([]string{"run", "--once"})
	require.ErrorIs(t, cli.Execute(context.Background()), boom)
}

func TestResolve_PrintsSystemBundle(t *testing.T) {
	cli, loader := newCLI(t)
	loader.EXPECT().Load("kern.yaml").Return(emptyConfig(t), nil)

	var out bytes.Buffer
	cli.SetOutput(&out)
	cli.SetArgs([]string{"resolve"})
	require.NoError(t, cli.Execute(context.Background()))

	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "system.bundle:")
	assert.Contains(t, out.String(), "ACTIVE")
}

func TestVersion(t *testing.T) {
	cli, _ := newCLI(t)

	var out bytes.Buffer
	cli.SetOutput(&out)
	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "kern "+build.String()+"\n", out.String())
}

func TestRoot_Help(t *testing.T) {
	cli, _ := newCLI(t)

	var out bytes.Buffer
	cli.SetOutput(&out)
	cli.SetArgs([]string{"--help"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "resolve")
}
