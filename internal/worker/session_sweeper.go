package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/session"
)

// RunSessionSweeper purges expired sessions every interval until ctx is done.
// It returns immediately when the store needs no sweeping or interval is not positive.
func RunSessionSweeper(ctx context.Context, store session.Store, interval time.Duration, logger *zap.Logger) {
	sweeper, ok := store.(session.Sweeper)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}
