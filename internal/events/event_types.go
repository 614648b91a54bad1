package events

import (
	"time"
)

// Collection names a logical record collection that emits change notifications.
type Collection string

const (
	CollectionTickets Collection = "tickets"
	CollectionUpdates Collection = "updates"
)

// ChangeOp enumerates row-level operations reported by the record store.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent reports that a row in a watched collection changed.
type ChangeEvent struct {
	ID         string     `json:"id"`
	Collection Collection `json:"collection"`
	Op         ChangeOp   `json:"op"`
	RecordID   int64      `json:"record_id"`
	Timestamp  time.Time  `json:"timestamp"`
}
