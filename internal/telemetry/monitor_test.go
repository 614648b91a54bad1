package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

type stubFetcher struct {
	status domain.ServerStatus
	err    error
	calls  int
}

func (f *stubFetcher) Fetch(_ context.Context, host string) (domain.ServerStatus, error) {
	f.calls++
	f.status.Host = host
	return f.status, f.err
}

type memoryCache struct {
	stored map[string]domain.ServerStatus
}

func (c *memoryCache) Get(_ context.Context, host string) (domain.ServerStatus, bool, error) {
	s, ok := c.stored[host]
	return s, ok, nil
}

func (c *memoryCache) Put(_ context.Context, status domain.ServerStatus) error {
	if c.stored == nil {
		c.stored = map[string]domain.ServerStatus{}
	}
	c.stored[status.Host] = status
	return nil
}

func TestMonitorDisabledWithoutHost(t *testing.T) {
	fetcher := &stubFetcher{}
	m := NewMonitor("", fetcher, nil, 0, zap.NewNop())
	assert.False(t, m.Enabled())

	m.Run(context.Background())
	assert.Zero(t, fetcher.calls)
	assert.Equal(t, domain.ServerStateDisabled, m.Current(context.Background()).State)
}

func TestMonitorStartsUnknown(t *testing.T) {
	m := NewMonitor("play.example.net", &stubFetcher{}, nil, 0, zap.NewNop())
	assert.Equal(t, domain.ServerStateUnknown, m.Current(context.Background()).State)
}

func TestMonitorRefreshReplacesSnapshotAndObserves(t *testing.T) {
	online := 3
	fetcher := &stubFetcher{status: domain.ServerStatus{
		State:         domain.ServerStateOnline,
		PlayersOnline: &online,
		Players:       []domain.Player{{ID: "0-a", Name: "a"}},
		FetchedAt:     time.Now(),
	}}
	cache := &memoryCache{}
	m := NewMonitor("play.example.net", fetcher, cache, 0, zap.NewNop())

	var outcomes []bool
	m.Observe(func(source string, ok bool) {
		assert.Equal(t, "telemetry", source)
		outcomes = append(outcomes, ok)
	})

	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, domain.ServerStateOnline, m.Current(context.Background()).State)
	assert.Contains(t, cache.stored, "play.example.net")

	fetcher.status = domain.OfflineStatus("", nil, time.Now().Add(time.Second))
	fetcher.err = errors.New("timeout")
	require.Error(t, m.Refresh(context.Background()))

	current := m.Current(context.Background())
	assert.Equal(t, domain.ServerStateOffline, current.State)
	assert.Empty(t, current.Players, "a failed poll never serves the previous roster")
	assert.Equal(t, []bool{true, false}, outcomes)
}

func TestMonitorPrefersNewerCachedSnapshot(t *testing.T) {
	cache := &memoryCache{}
	m := NewMonitor("play.example.net", &stubFetcher{}, cache, 0, zap.NewNop())

	shared := domain.ServerStatus{Host: "play.example.net", State: domain.ServerStateOnline, FetchedAt: time.Now()}
	require.NoError(t, cache.Put(context.Background(), shared))

	assert.Equal(t, domain.ServerStateOnline, m.Current(context.Background()).State)
}
