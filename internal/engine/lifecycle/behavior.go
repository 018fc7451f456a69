package lifecycle

import (
	"context"

	"go.trai.ch/kern/internal/core/domain"
	"go.trai.ch/zerr"
)

// behavior is the kind-specific part of the lifecycle.
type behavior interface {
	start(ctx context.Context, b *domain.Bundle, opts StartOptions) error
	stop(ctx context.Context, b *domain.Bundle, opts StopOptions) error
	uninstall(ctx context.Context, b *domain.Bundle) error
	update(ctx context.Context, b *domain.Bundle, d domain.Deployment) error
}

type hostBehavior struct{ f *Framework }

func (h hostBehavior) start(ctx context.Context, b *domain.Bundle, opts StartOptions) error {
	return h.f.startHost(ctx, b, opts)
}

func (h hostBehavior) stop(ctx context.Context, b *domain.Bundle, opts StopOptions) error {
	return h.f.stopHost(ctx, b, opts)
}

func (h hostBehavior) uninstall(ctx context.Context, b *domain.Bundle) error {
	return h.f.uninstall(ctx, b)
}

func (h hostBehavior) update(ctx context.Context, b *domain.Bundle, d domain.Deployment) error {
	return h.f.update(ctx, b, d)
}

// fragmentBehavior has no activation of its own; fragments follow their host.
type fragmentBehavior struct{ f *Framework }

func (fragmentBehavior) start(_ context.Context, b *domain.Bundle, _ StartOptions) error {
	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}
	return zerr.With(zerr.Wrap(domain.ErrFragmentStart, "start bundle"), "bundle", b.String())
}

func (fragmentBehavior) stop(_ context.Context, b *domain.Bundle, _ StopOptions) error {
	if b.State() == domain.StateUninstalled {
		return uninstalledError(b)
	}
	return zerr.With(zerr.Wrap(domain.ErrFragmentStop, "stop bundle"), "bundle", b.String())
}

func (fb fragmentBehavior) uninstall(ctx context.Context, b *domain.Bundle) error {
	return fb.f.uninstall(ctx, b)
}

func (fb fragmentBehavior) update(ctx context.Context, b *domain.Bundle, d domain.Deployment) error {
	return fb.f.update(ctx, b, d)
}

// systemBehavior is bundle 0: always active while the framework runs.
type systemBehavior struct{ f *Framework }

func (systemBehavior) start(_ context.Context, b *domain.Bundle, _ StartOptions) error {
	if b.State() == domain.StateActive {
		return nil
	}
	return zerr.With(zerr.Wrap(domain.ErrIllegalTransition, "restart system bundle"), "state", b.State().String())
}

func (s systemBehavior) stop(ctx context.Context, _ *domain.Bundle, _ StopOptions) error {
	return s.f.Shutdown(ctx)
}

func (systemBehavior) uninstall(context.Context, *domain.Bundle) error {
	return domain.ErrSystemBundleUninstall
}

func (systemBehavior) update(context.Context, *domain.Bundle, domain.Deployment) error {
	return zerr.Wrap(domain.ErrIllegalTransition, "update system bundle")
}
