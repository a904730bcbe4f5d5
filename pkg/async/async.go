package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/udhago/udhago-backend/pkg/logger"
	"go.uber.org/zap"
)

// Go runs a function in a goroutine with correlation-ID propagation and panic
// recovery. This is the recommended way to start fire-and-forget tasks whose
// failure must never reach the caller.
//
// Usage:
//
//	async.Go(ctx, "log-search", func(ctx context.Context) {
//	    analyticsService.LogSearch(ctx, entry)
//	})
func Go(ctx context.Context, taskName string, fn func(ctx context.Context)) {
	correlationID := logger.CorrelationIDFromContext(ctx)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("async task panicked",
					zap.String("task", taskName),
					zap.String("correlation_id", correlationID),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
			}
		}()

		// Detach from the request context so the task survives the response,
		// but keep the correlation ID for log stitching.
		taskCtx := context.Background()
		if correlationID != "" {
			taskCtx = logger.ContextWithCorrelationID(taskCtx, correlationID)
		}

		fn(taskCtx)

		logger.Debug("async task completed",
			zap.String("task", taskName),
			zap.Duration("duration", time.Since(start)),
		)
	}()
}
