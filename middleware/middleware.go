// Package middleware provides composable middleware around callback
// invocation. Middleware wraps globalstep and delayed-job callbacks
// synchronously and can modify execution (recover from panics, log,
// record metrics).
package middleware

// Kind identifies what sort of callback is being invoked.
type Kind string

const (
	// KindStep is a long-lived globalstep callback.
	KindStep Kind = "globalstep"
	// KindJob is a one-shot delayed job callback.
	KindJob Kind = "job"
)

// Call describes the callback about to be invoked.
type Call struct {
	// Kind distinguishes globalsteps from delayed jobs.
	Kind Kind

	// Name is the registration name for globalsteps, or the TypeID
	// string for delayed jobs.
	Name string
}

// Handler is the terminal function that runs the callback itself.
// Callbacks do not return errors; a non-nil return surfaces only from
// middleware (typically a recovered panic).
type Handler func() error

// Middleware wraps a Handler with cross-cutting logic. Middleware MUST
// call next to continue the chain unless short-circuiting.
type Middleware func(c Call, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(c Call, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func() error {
				return mw(c, prev)
			}
		}
		return h()
	}
}
