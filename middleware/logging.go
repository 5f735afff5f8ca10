package middleware

import (
	"log/slog"
	"time"
)

// Logging returns middleware that traces callback invocations at debug
// level. This runs on the step hot path, so it logs nothing unless the
// handler's level admits debug records.
func Logging(logger *slog.Logger) Middleware {
	return func(c Call, next Handler) error {
		start := time.Now()
		err := next()
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("callback failed",
				slog.String("kind", string(c.Kind)),
				slog.String("name", c.Name),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
			return err
		}

		logger.Debug("callback completed",
			slog.String("kind", string(c.Kind)),
			slog.String("name", c.Name),
			slog.Duration("elapsed", elapsed),
		)
		return nil
	}
}
