package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"
)

// Recover returns middleware that recovers from panics in the callback
// chain. Panics are converted to errors so the surrounding pass can
// continue past the failing callback.
//
// Log output is rate-limited: a globalstep that panics on every step
// would otherwise emit a stack trace 20 times a second. The error is
// still returned on every invocation regardless of the limiter.
func Recover(logger *slog.Logger) Middleware {
	limiter := rate.NewLimiter(rate.Every(time.Second), 5)

	return func(c Call, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				if limiter.Allow() {
					logger.Error("callback panicked",
						slog.String("kind", string(c.Kind)),
						slog.String("name", c.Name),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
				}
				retErr = fmt.Errorf("panic in %s %s: %v", c.Kind, c.Name, r)
			}
		}()
		return next()
	}
}
