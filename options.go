package tick

import (
	"log/slog"

	"github.com/voxelforge/tick/ext"
	"github.com/voxelforge/tick/middleware"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger for the dispatcher and its
// components.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithInitialGametime sets the starting gametime, typically the value
// loaded from world storage. Defaults to zero (fresh world).
func WithInitialGametime(v float64) Option {
	return func(d *Dispatcher) {
		d.initialGametime = v
	}
}

// WithExtension registers a lifecycle extension with the dispatcher.
func WithExtension(e ext.Extension) Option {
	return func(d *Dispatcher) {
		d.extensions = append(d.extensions, e)
	}
}

// WithMiddleware adds middleware around every callback invocation,
// inside the built-in panic recovery.
func WithMiddleware(m middleware.Middleware) Option {
	return func(d *Dispatcher) {
		d.mws = append(d.mws, m)
	}
}
