package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/poller"
)

// DefaultPollInterval matches the refresh cadence of the public widget.
const DefaultPollInterval = 15 * time.Second

// Fetcher retrieves a snapshot for a host.
type Fetcher interface {
	Fetch(ctx context.Context, host string) (domain.ServerStatus, error)
}

// Monitor polls the status API and holds the latest snapshot.
type Monitor struct {
	host     string
	fetcher  Fetcher
	cache    SnapshotCache
	interval time.Duration
	logger   *zap.Logger
	observe  func(source string, ok bool)

	mu     sync.RWMutex
	latest domain.ServerStatus
}

// NewMonitor builds a monitor. An empty host disables telemetry; cache may be nil.
func NewMonitor(host string, fetcher Fetcher, cache SnapshotCache, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		host:     host,
		fetcher:  fetcher,
		cache:    cache,
		interval: interval,
		logger:   logger,
		latest:   domain.UnknownStatus(host),
	}
}

// Observe registers fn to be told the outcome of every refresh.
func (m *Monitor) Observe(fn func(source string, ok bool)) {
	m.observe = fn
}

// Enabled reports whether a host is configured.
func (m *Monitor) Enabled() bool {
	return m.host != ""
}

// Run polls until ctx is cancelled. It returns immediately when telemetry is disabled.
func (m *Monitor) Run(ctx context.Context) {
	if !m.Enabled() {
		m.logger.Info("SERVER_HOST not set; telemetry disabled")
		return
	}
	poller.New("telemetry", m.Refresh, m.interval, m.logger).Run(ctx)
}

// Refresh fetches one snapshot and replaces the current one. A failed fetch still replaces it
// with an offline snapshot so a stale roster is never served.
func (m *Monitor) Refresh(ctx context.Context) error {
	status, err := m.fetcher.Fetch(ctx, m.host)

	m.mu.Lock()
	m.latest = status
	m.mu.Unlock()

	if m.cache != nil {
		if cacheErr := m.cache.Put(ctx, status); cacheErr != nil {
			m.logger.Warn("failed to cache telemetry snapshot", zap.Error(cacheErr))
		}
	}
	if m.observe != nil {
		m.observe("telemetry", err == nil)
	}
	return err
}

// Current returns the newest known snapshot, preferring a fresher shared one from the cache.
func (m *Monitor) Current(ctx context.Context) domain.ServerStatus {
	if !m.Enabled() {
		return domain.ServerStatus{State: domain.ServerStateDisabled, Players: []domain.Player{}}
	}

	m.mu.RLock()
	local := m.latest
	m.mu.RUnlock()

	if m.cache != nil {
		shared, ok, err := m.cache.Get(ctx, m.host)
		if err != nil {
			m.logger.Debug("telemetry cache read failed", zap.Error(err))
		} else if ok && shared.FetchedAt.After(local.FetchedAt) {
			return shared
		}
	}
	return local
}
