package builder

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/render"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithRenderer replaces the default template renderer.
func WithRenderer(r render.Renderer) Option {
	return func(b *Builder) {
		b.renderer = r
	}
}

// WithOutDir sets the root-relative directory artifacts are written
// to.
func WithOutDir(dir string) Option {
	return func(b *Builder) {
		b.outDir = dir
	}
}

// WithTimestampFunc overrides the build timestamp source. Tests use
// this to pin the clock.
func WithTimestampFunc(fn func() time.Time) Option {
	return func(b *Builder) {
		b.now = fn
	}
}

// WithVCSHashFunc overrides how the version-control hash is obtained.
func WithVCSHashFunc(fn func(context.Context) string) Option {
	return func(b *Builder) {
		b.vcsHash = fn
	}
}

// WithReproducible pins the build metadata to fixed values so the same
// content tree always produces byte-identical output.
func WithReproducible(on bool) Option {
	return func(b *Builder) {
		b.reproducible = on
	}
}
