package worker

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gitanomongolomon/gmm-site/internal/persistence"
	"github.com/gitanomongolomon/gmm-site/internal/service"
	"github.com/gitanomongolomon/gmm-site/internal/telemetry"
)

// Background bundles the long-running loops of the API process. Nil members are skipped.
type Background struct {
	Notifications *service.NotificationService
	Listener      *persistence.Listener
	Monitor       *telemetry.Monitor
}

// Start registers notification handlers and launches the change listener and telemetry monitor.
// The returned function blocks until every loop has exited after ctx is cancelled.
func Start(ctx context.Context, bg Background, logger *zap.Logger) (wait func()) {
	if bg.Notifications != nil {
		bg.Notifications.RegisterHandlers()
	}

	group, ctx := errgroup.WithContext(ctx)
	if bg.Listener != nil {
		group.Go(func() error {
			bg.Listener.Run(ctx)
			return nil
		})
	}
	if bg.Monitor != nil {
		group.Go(func() error {
			bg.Monitor.Run(ctx)
			return nil
		})
	}

	return func() {
		_ = group.Wait()
		if bg.Notifications != nil {
			bg.Notifications.Close()
		}
		logger.Info("background workers stopped")
	}
}
