package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kern/internal/adapters/deployment"
	"go.trai.ch/kern/internal/adapters/resolver"
	"go.trai.ch/kern/internal/adapters/runtime"
	"go.trai.ch/kern/internal/adapters/telemetry"
	"go.trai.ch/kern/internal/app"
	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/kern/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const (
	descriptorA = `
symbolic_name: a
version: 1.0.0
activator: a.Activator
imports: [{name: b.api}]
`
	descriptorB = `
symbolic_name: b
version: 1.0.0
exports: [{name: b.api, version: 1.0.0}]
`
	descriptorC = `
symbolic_name: c
version: 1.0.0
imports: [{name: missing.api}]
`
)

// recorder counts activator calls.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type harness struct {
	app      *app.App
	loader   *mocks.MockConfigLoader
	dir      string
	recorder *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	dir := t.TempDir()
	for name, body := range map[string]string{"a.yaml": descriptorA, "b.yaml": descriptorB, "c.yaml": descriptorC} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	rec := &recorder{}
	registry := runtime.New()
	registry.RegisterActivator("a.Activator", runtime.Funcs{
		StartFunc: func(context.Context, *domain.Bundle) error { rec.add("start"); return nil },
		StopFunc:  func(context.Context, *domain.Bundle) error { rec.add("stop"); return nil },
	})

	provider, err := deployment.NewProvider(deployment.DefaultCacheSize)
	require.NoError(t, err)

	loader := mocks.NewMockConfigLoader(ctrl)
	store := func(dir string) ports.StorageProvider { return deployment.NewStore(dir) }
	a := app.New(loader, provider, resolver.New(), registry, registry, store, log, telemetry.NewNoOpTracer())
	return &harness{app: a, loader: loader, dir: dir, recorder: rec}
}

func (h *harness) config(entries ...domain.BundleEntry) *domain.FrameworkConfig {
	cfg := domain.DefaultFrameworkConfig()
	cfg.LockTimeout = time.Second
	cfg.StorageDir = filepath.Join(h.dir, "storage")
	for i := range entries {
		entries[i].Location = filepath.Join(h.dir, entries[i].Location)
	}
	cfg.Bundles = entries
	return cfg
}

func TestApp_RunOnce(t *testing.T) {
	h := newHarness(t)
	cfg := h.config(domain.BundleEntry{Location: "a.yaml", Start: true}, domain.BundleEntry{Location: "b.yaml"})
	h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)

	err := h.app.Run(context.Background(), "kern.yaml", app.RunOptions{Once: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "stop"}, h.recorder.snapshot())
}

func TestApp_RunWaitsForContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config(domain.BundleEntry{Location: "a.yaml", Start: true}, domain.BundleEntry{Location: "b.yaml"})
		h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- h.app.Run(ctx, "kern.yaml", app.RunOptions{}) }()

		synctest.Wait()
		assert.Equal(t, []string{"start"}, h.recorder.snapshot())
		select {
		case <-done:
			t.Fatal("Run returned before the context was cancelled")
		default:
		}

		cancel()
		require.NoError(t, <-done)
		assert.Equal(t, []string{"start", "stop"}, h.recorder.snapshot())
	})
}

func TestApp_RunRestartsPersistentlyStarted(t *testing.T) {
	h := newHarness(t)
	first := h.config(domain.BundleEntry{Location: "a.yaml", Start: true}, domain.BundleEntry{Location: "b.yaml"})
	second := h.config(domain.BundleEntry{Location: "a.yaml"}, domain.BundleEntry{Location: "b.yaml"})
	gomock.InOrder(
		h.loader.EXPECT().Load("kern.yaml").Return(first, nil),
		h.loader.EXPECT().Load("kern.yaml").Return(second, nil),
	)

	require.NoError(t, h.app.Run(context.Background(), "kern.yaml", app.RunOptions{Once: true}))
	require.NoError(t, h.app.Run(context.Background(), "kern.yaml", app.RunOptions{Once: true}))
	assert.Equal(t, []string{"start", "stop", "start", "stop"}, h.recorder.snapshot())
}

func TestApp_RunStartFailure(t *testing.T) {
	h := newHarness(t)
	cfg := h.config(domain.BundleEntry{Location: "a.yaml", Start: true})
	h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)

	err := h.app.Run(context.Background(), "kern.yaml", app.RunOptions{Once: true})
	require.ErrorIs(t, err, domain.ErrFrameworkBootFailed)
	require.ErrorIs(t, err, domain.ErrBundleStart)
	assert.Empty(t, h.recorder.snapshot())
}

func TestApp_RunInstallFailure(t *testing.T) {
	h := newHarness(t)
	cfg := h.config(domain.BundleEntry{Location: "nope.yaml", Start: true})
	h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)

	err := h.app.Run(context.Background(), "kern.yaml", app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrFrameworkBootFailed)
	require.ErrorIs(t, err, domain.ErrContentReadFailed)
}

func TestApp_RunConfigError(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("boom")
	h.loader.EXPECT().Load("kern.yaml").Return(nil, boom)

	err := h.app.Run(context.Background(), "kern.yaml", app.RunOptions{Once: true})
	require.ErrorIs(t, err, boom)
}

func TestApp_RunUnknownRefreshPolicy(t *testing.T) {
	h := newHarness(t)
	cfg := h.config()
	cfg.RefreshPolicy = "sometimes"
	h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)

	err := h.app.Run(context.Background(), "kern.yaml", app.RunOptions{Once: true})
	require.ErrorIs(t, err, domain.ErrUnknownRefreshPolicy)
}

func TestApp_Resolve(t *testing.T) {
	h := newHarness(t)
	cfg := h.config(
		domain.BundleEntry{Location: "a.yaml"},
		domain.BundleEntry{Location: "b.yaml"},
		domain.BundleEntry{Location: "c.yaml"},
	)
	h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)

	reports, err := h.app.Resolve(context.Background(), "kern.yaml")
	require.NoError(t, err)
	require.Len(t, reports, 4)

	byName := make(map[string]app.BundleReport, len(reports))
	for _, r := range reports {
		byName[r.Name] = r
	}
	assert.Equal(t, domain.StateResolved, byName["a"].State)
	assert.Equal(t, []string{"osgi.wiring.package:b.api -> b:1.0.0#0"}, byName["a"].Wires)
	assert.Equal(t, domain.StateResolved, byName["b"].State)
	assert.Equal(t, domain.StateInstalled, byName["c"].State)
	assert.Empty(t, byName["c"].Wires)
	assert.Empty(t, h.recorder.snapshot(), "resolve never starts bundles")
}

func TestApp_RunWatchRedeploys(t *testing.T) {
	h := newHarness(t)
	cfg := h.config(domain.BundleEntry{Location: "a.yaml", Start: true}, domain.BundleEntry{Location: "b.yaml"})
	h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)
	locB := filepath.Join(h.dir, "b.yaml")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Watch(gomock.Any(), []string{cfg.Bundles[0].Location, locB}).Return(nil)
	w.EXPECT().Changes().Return(func(yield func([]string) bool) {
		updated := "symbolic_name: b\nversion: 1.1.0\nexports: [{name: b.api, version: 1.1.0}]\n"
		require.NoError(t, os.WriteFile(locB, []byte(updated), 0o600))
		yield([]string{locB, "/not/installed.yaml"})
		cancel()
	})
	w.EXPECT().Close().Return(nil)
	h.app.WithWatcher(func() (ports.Watcher, error) { return w, nil })

	require.NoError(t, h.app.Run(ctx, "kern.yaml", app.RunOptions{Watch: true}))
	assert.Equal(t, []string{"start", "stop", "start", "stop"}, h.recorder.snapshot(),
		"the dependant of the redeployed bundle is restarted by the refresh")
}

func TestApp_RunWatchFactoryError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config(domain.BundleEntry{Location: "b.yaml"})
		h.loader.EXPECT().Load("kern.yaml").Return(cfg, nil)
		boom := errors.New("no inotify")
		h.app.WithWatcher(func() (ports.Watcher, error) { return nil, boom })

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- h.app.Run(ctx, "kern.yaml", app.RunOptions{Watch: true}) }()

		synctest.Wait()
		cancel()
		err := <-done
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, domain.ErrFrameworkBootFailed)
	})
}
