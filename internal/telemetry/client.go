package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

// DefaultAPIBase is the public Minecraft server status API.
const DefaultAPIBase = "https://api.mcsrvstat.us/2"

// StatusClient queries the server status API for one host.
type StatusClient struct {
	base   string
	client *http.Client
	now    func() time.Time
}

// NewStatusClient creates a client against base, or DefaultAPIBase when empty.
func NewStatusClient(base string) *StatusClient {
	if base == "" {
		base = DefaultAPIBase
	}
	return &StatusClient{
		base: strings.TrimRight(base, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

type statusResponse struct {
	Online   bool   `json:"online"`
	Version  string `json:"version"`
	Software string `json:"software"`
	Players  *struct {
		Online *int              `json:"online"`
		Max    *int              `json:"max"`
		List   []json.RawMessage `json:"list"`
	} `json:"players"`
}

// Fetch returns the current snapshot of host. On any failure it still returns an offline
// snapshot with a nil player count, together with the error.
func (c *StatusClient) Fetch(ctx context.Context, host string) (domain.ServerStatus, error) {
	status, err := c.fetch(ctx, host)
	if err != nil {
		return domain.OfflineStatus(host, nil, c.now()), err
	}
	return status, nil
}

func (c *StatusClient) fetch(ctx context.Context, host string) (domain.ServerStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+url.PathEscape(host), nil)
	if err != nil {
		return domain.ServerStatus{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ServerStatus{}, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ServerStatus{}, fmt.Errorf("status api returned %d: %s", resp.StatusCode, string(body))
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.ServerStatus{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return toStatus(host, payload, c.now()), nil
}

func toStatus(host string, payload statusResponse, at time.Time) domain.ServerStatus {
	if !payload.Online {
		zero := 0
		status := domain.OfflineStatus(host, &zero, at)
		status.Version = versionOf(payload)
		return status
	}

	status := domain.ServerStatus{
		Host:      host,
		State:     domain.ServerStateOnline,
		Version:   versionOf(payload),
		Players:   []domain.Player{},
		FetchedAt: at,
	}
	online := 0
	if payload.Players != nil {
		if payload.Players.Online != nil {
			online = *payload.Players.Online
		}
		status.PlayersMax = payload.Players.Max
		for _, raw := range payload.Players.List {
			if len(status.Players) == domain.MaxRosterSize {
				break
			}
			name := playerName(raw)
			status.Players = append(status.Players, domain.Player{
				ID:     fmt.Sprintf("%d-%s", len(status.Players), name),
				Name:   name,
				Avatar: FirstAvatar(name),
			})
		}
	}
	status.PlayersOnline = &online
	return status
}

func versionOf(payload statusResponse) string {
	if payload.Version != "" {
		return payload.Version
	}
	return payload.Software
}

// playerName accepts both the plain string roster and the {name, uuid} object roster.
func playerName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}
