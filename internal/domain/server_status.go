package domain

import "time"

// ServerState is the coarse availability of the game server.
type ServerState string

const (
	ServerStateUnknown  ServerState = "unknown"
	ServerStateOnline   ServerState = "online"
	ServerStateOffline  ServerState = "offline"
	ServerStateDisabled ServerState = "disabled"
)

// MaxRosterSize caps the number of players reported in a snapshot.
const MaxRosterSize = 100

// Player is one connected player with the first avatar to try.
type Player struct {
	ID     string
	Name   string
	Avatar string
}

// ServerStatus is a snapshot of the game server as seen by the status API.
type ServerStatus struct {
	Host          string
	State         ServerState
	Version       string
	PlayersOnline *int
	PlayersMax    *int
	Players       []Player
	FetchedAt     time.Time
}

// UnknownStatus is the snapshot before the first poll completes.
func UnknownStatus(host string) ServerStatus {
	return ServerStatus{Host: host, State: ServerStateUnknown}
}

// OfflineStatus is a snapshot with no roster. A nil count means the poll itself failed.
func OfflineStatus(host string, playersOnline *int, at time.Time) ServerStatus {
	return ServerStatus{Host: host, State: ServerStateOffline, PlayersOnline: playersOnline, Players: []Player{}, FetchedAt: at}
}
