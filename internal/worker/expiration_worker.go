package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/mentorship-service/internal/service"
)

// StartExpirationWorker periodically expires overdue override requests so
// pending requests do not linger past their deadline when no coordinator
// is reading the queue. Returns immediately; the sweep runs until ctx is
// cancelled. A non-positive interval disables the worker.
func StartExpirationWorker(ctx context.Context, overrides *service.OverrideService, interval time.Duration, logger *zap.Logger) {
	if overrides == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				expired, err := overrides.ExpireOverdue(ctx)
				if err != nil {
					logger.Warn("expiration sweep failed", zap.Error(err))
					continue
				}
				if expired > 0 {
					logger.Info("expired overdue override requests", zap.Int("count", expired))
				}
			}
		}
	}()
}
