package poller

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RefreshFunc pulls fresh state. Errors are logged and retried on the next tick.
type RefreshFunc func(ctx context.Context) error

// Refresher runs one refresh function on a fixed interval and whenever Trigger is called.
// Timer ticks and push notifications share the same code path.
type Refresher struct {
	name     string
	fn       RefreshFunc
	interval time.Duration
	trigger  chan struct{}
	logger   *zap.Logger
}

// New builds a refresher. A non-positive interval disables the timer and leaves only triggers.
func New(name string, fn RefreshFunc, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		name:     name,
		fn:       fn,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// Trigger requests a refresh without blocking. Requests made while one is pending coalesce.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes immediately, then on every tick or trigger until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			r.refresh(ctx)
		case <-r.trigger:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.fn(ctx); err != nil && ctx.Err() == nil {
		r.logger.Warn("refresh failed", zap.String("refresher", r.name), zap.Error(err))
	}
}
