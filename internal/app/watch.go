package app

import (
	"context"
	"fmt"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/kern/internal/engine/lifecycle"
	"go.trai.ch/zerr"
)

// watch updates bundles whose content changes and refreshes them, until ctx
// is done. Each batch of changes is applied as one refresh.
func (a *App) watch(ctx context.Context, fw *lifecycle.Framework, bundles []*domain.Bundle) error {
	if a.watchers == nil {
		return zerr.Wrap(domain.ErrWatchFailed, "no watcher configured")
	}
	w, err := a.watchers()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	locations := make([]string, 0, len(bundles))
	for _, b := range bundles {
		locations = append(locations, b.Location())
	}
	if err := w.Watch(ctx, locations); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("watching %d bundle location(s)", len(locations)))

	for changed := range w.Changes() {
		a.redeploy(ctx, fw, changed)
	}
	return nil
}

// redeploy updates every installed bundle at the changed locations and then
// refreshes them together. Failures are logged.
func (a *App) redeploy(ctx context.Context, fw *lifecycle.Framework, locations []string) {
	var updated []*domain.Bundle
	for _, loc := range locations {
		b, ok := fw.BundleByLocation(loc)
		if !ok {
			continue
		}
		d, err := a.deploy(ctx, loc)
		if err != nil {
			a.logger.Error(zerr.With(zerr.Wrap(err, "redeploy bundle"), "bundle", b.String()))
			continue
		}
		if err := fw.Update(ctx, b, d); err != nil {
			a.logger.Error(zerr.With(zerr.Wrap(err, "redeploy bundle"), "bundle", b.String()))
			continue
		}
		updated = append(updated, b)
	}
	if len(updated) == 0 {
		return
	}
	if err := fw.Refresh(ctx, updated...); err != nil {
		a.logger.Error(zerr.Wrap(err, "refresh redeployed bundles"))
		return
	}
	a.logger.Info(fmt.Sprintf("redeployed %d bundle(s)", len(updated)))
}
