package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/feed"
)

// BannerPollInterval is how often the newest post is rechecked.
const BannerPollInterval = 60 * time.Second

// LatestSource returns the newest post, or nil when there are none.
type LatestSource interface {
	LatestUpdate(ctx context.Context) (*domain.UpdatePost, error)
}

// BannerWatcher tracks the newest post and whether its announcement should show.
type BannerWatcher struct {
	source LatestSource
	runner *runner
	now    func() time.Time

	mu        sync.RWMutex
	latest    *domain.UpdatePost
	dismissed bool
}

// NewBannerWatcher builds a watcher polling every interval.
func NewBannerWatcher(source LatestSource, interval time.Duration, logger *zap.Logger) *BannerWatcher {
	if interval <= 0 {
		interval = BannerPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &BannerWatcher{source: source, now: time.Now}
	w.runner = &runner{name: "banner", refresh: w.Refresh, interval: interval, logger: logger}
	return w
}

// Refresh fetches the newest post.
func (w *BannerWatcher) Refresh(ctx context.Context) error {
	latest, err := w.source.LatestUpdate(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	w.latest = latest
	w.mu.Unlock()
	return nil
}

// Start polls until Stop.
func (w *BannerWatcher) Start(ctx context.Context) { w.runner.start(ctx) }

// Stop halts polling.
func (w *BannerWatcher) Stop() { w.runner.stop() }

// Notify rechecks after a change notification.
func (w *BannerWatcher) Notify() { w.runner.trigger() }

// Running reports whether polling is active.
func (w *BannerWatcher) Running() bool { return w.runner.running() }

// SessionEnded is closed when polling stopped because the session was rejected.
func (w *BannerWatcher) SessionEnded() <-chan struct{} { return w.runner.sessionEnded() }

// Dismiss hides the banner for the rest of this session.
func (w *BannerWatcher) Dismiss() {
	w.mu.Lock()
	w.dismissed = true
	w.mu.Unlock()
}

// State evaluates the banner now.
func (w *BannerWatcher) State() feed.Banner {
	w.mu.RLock()
	latest, dismissed := w.latest, w.dismissed
	w.mu.RUnlock()

	banner := feed.Evaluate(latest, w.now())
	if dismissed {
		banner.Visible = false
	}
	return banner
}
