package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs the duration of a request-scoped operation through the global
// logger, tagged with the request id carried by ctx.
func Time(ctx context.Context, name string) func(errp *error) {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return TimeOp(zap.L().With(zap.String("req_id", reqID)), name)
}

// TimeOp logs the duration of name at debug level (warn on error) and
// records it in the operation histogram.
func TimeOp(logger *zap.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			OpDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			logger.Warn("op failed",
				zap.String("op", name),
				zap.Int64("dur_ms", dur.Milliseconds()),
				zap.Error(*errp),
			)
			return
		}
		OpDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		logger.Debug("op done", zap.String("op", name), zap.Int64("dur_ms", dur.Milliseconds()))
	}
}
