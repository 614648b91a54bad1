package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/events"
)

// ChangeChannel is the NOTIFY channel the record_changes trigger writes to.
const ChangeChannel = "record_changes"

const listenerRetryDelay = 5 * time.Second

type changePayload struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         int64  `json:"id"`
}

// Listener relays Postgres NOTIFY messages to an event dispatcher.
type Listener struct {
	pool       *pgxpool.Pool
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewListener builds a listener over the pool.
func NewListener(pool *pgxpool.Pool, dispatcher events.Dispatcher, logger *zap.Logger) *Listener {
	return &Listener{pool: pool, dispatcher: dispatcher, logger: logger}
}

// Run listens until ctx is cancelled, reconnecting after connection loss.
func (l *Listener) Run(ctx context.Context) {
	if l.pool == nil {
		l.logger.Warn("no postgres pool; change notifications disabled")
		return
	}
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn("change listener stopped; retrying", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenerRetryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}
	l.logger.Info("listening for record changes", zap.String("channel", ChangeChannel))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		event, err := DecodeChange(notification.Payload)
		if err != nil {
			l.logger.Warn("discarding malformed change notification", zap.String("payload", notification.Payload), zap.Error(err))
			continue
		}
		if err := l.dispatcher.Publish(ctx, event); err != nil {
			l.logger.Warn("change handler failed", zap.String("collection", string(event.Collection)), zap.Error(err))
		}
	}
}

// DecodeChange parses a record_changes payload into a ChangeEvent.
func DecodeChange(payload string) (events.ChangeEvent, error) {
	var p changePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return events.ChangeEvent{}, err
	}
	collection := events.Collection(p.Collection)
	if collection != events.CollectionTickets && collection != events.CollectionUpdates {
		return events.ChangeEvent{}, errors.New("unknown collection " + p.Collection)
	}
	return events.ChangeEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		Op:         events.ChangeOp(p.Op),
		RecordID:   p.ID,
		Timestamp:  time.Now(),
	}, nil
}
