package dto

import (
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/telemetry"
)

// PlayerResponse is one roster entry. Avatars lists the images to try in order.
type PlayerResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Avatar  string   `json:"avatar"`
	Avatars []string `json:"avatars"`
}

// TelemetryResponse is the server status widget payload.
type TelemetryResponse struct {
	Host          string           `json:"host,omitempty"`
	State         string           `json:"state"`
	Version       string           `json:"version,omitempty"`
	PlayersOnline *int             `json:"players_online"`
	PlayersMax    *int             `json:"players_max"`
	Players       []PlayerResponse `json:"players"`
	FetchedAt     *time.Time       `json:"fetched_at,omitempty"`
}

// NewTelemetryResponse converts a snapshot.
func NewTelemetryResponse(s domain.ServerStatus) TelemetryResponse {
	resp := TelemetryResponse{
		Host:          s.Host,
		State:         string(s.State),
		Version:       s.Version,
		PlayersOnline: s.PlayersOnline,
		PlayersMax:    s.PlayersMax,
		Players:       make([]PlayerResponse, 0, len(s.Players)),
	}
	if !s.FetchedAt.IsZero() {
		at := s.FetchedAt
		resp.FetchedAt = &at
	}
	for _, p := range s.Players {
		resp.Players = append(resp.Players, PlayerResponse{
			ID:      p.ID,
			Name:    p.Name,
			Avatar:  p.Avatar,
			Avatars: telemetry.AvatarChain(p.Name),
		})
	}
	return resp
}
