package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

// SnapshotTTL bounds how long a cached snapshot is served.
const SnapshotTTL = 30 * time.Second

const snapshotKeyPrefix = "gmm:telemetry:"

// SnapshotCache shares the latest snapshot between instances.
type SnapshotCache interface {
	Get(ctx context.Context, host string) (domain.ServerStatus, bool, error)
	Put(ctx context.Context, status domain.ServerStatus) error
}

type cachedPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type cachedStatus struct {
	Host          string         `json:"host"`
	State         string         `json:"state"`
	Version       string         `json:"version,omitempty"`
	PlayersOnline *int           `json:"players_online"`
	PlayersMax    *int           `json:"players_max"`
	Players       []cachedPlayer `json:"players"`
	FetchedAt     time.Time      `json:"fetched_at"`
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotCache stores snapshots under one key per host.
func NewRedisSnapshotCache(client *redis.Client) SnapshotCache {
	return &redisSnapshotCache{client: client, ttl: SnapshotTTL}
}

func (c *redisSnapshotCache) Get(ctx context.Context, host string) (domain.ServerStatus, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKeyPrefix+host).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ServerStatus{}, false, nil
	}
	if err != nil {
		return domain.ServerStatus{}, false, err
	}
	var cached cachedStatus
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.ServerStatus{}, false, err
	}
	status := domain.ServerStatus{
		Host:          cached.Host,
		State:         domain.ServerState(cached.State),
		Version:       cached.Version,
		PlayersOnline: cached.PlayersOnline,
		PlayersMax:    cached.PlayersMax,
		Players:       make([]domain.Player, 0, len(cached.Players)),
		FetchedAt:     cached.FetchedAt,
	}
	for _, p := range cached.Players {
		status.Players = append(status.Players, domain.Player{ID: p.ID, Name: p.Name, Avatar: p.Avatar})
	}
	return status, true, nil
}

func (c *redisSnapshotCache) Put(ctx context.Context, status domain.ServerStatus) error {
	cached := cachedStatus{
		Host:          status.Host,
		State:         string(status.State),
		Version:       status.Version,
		PlayersOnline: status.PlayersOnline,
		PlayersMax:    status.PlayersMax,
		Players:       make([]cachedPlayer, 0, len(status.Players)),
		FetchedAt:     status.FetchedAt,
	}
	for _, p := range status.Players {
		cached.Players = append(cached.Players, cachedPlayer{ID: p.ID, Name: p.Name, Avatar: p.Avatar})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKeyPrefix+status.Host, raw, c.ttl).Err()
}
