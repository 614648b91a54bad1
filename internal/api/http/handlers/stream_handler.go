package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/events"
)

const (
	streamBuffer    = 16
	streamHeartbeat = 25 * time.Second
)

// StreamHandler pushes record change notifications as server-sent events.
type StreamHandler struct {
	dispatcher events.Dispatcher
	shutdown   context.Context
	logger     *zap.Logger
}

// NewStreamHandler constructs handler. Open streams close when shutdown is cancelled.
func NewStreamHandler(shutdown context.Context, dispatcher events.Dispatcher, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{dispatcher: dispatcher, shutdown: shutdown, logger: logger}
}

// Updates GET /api/updates/stream.
func (h *StreamHandler) Updates(c *fiber.Ctx) error {
	return h.stream(c, events.CollectionUpdates)
}

// Admin GET /api/admin/stream carries both collections.
func (h *StreamHandler) Admin(c *fiber.Ctx) error {
	return h.stream(c, events.CollectionTickets, events.CollectionUpdates)
}

func (h *StreamHandler) stream(c *fiber.Ctx, collections ...events.Collection) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// Slow readers miss events rather than block the dispatcher; the next one still triggers a refresh.
	changes := make(chan events.ChangeEvent, streamBuffer)
	cancels := make([]events.CancelFunc, 0, len(collections))
	for _, collection := range collections {
		cancels = append(cancels, h.dispatcher.Subscribe(collection, func(_ context.Context, event events.ChangeEvent) error {
			select {
			case changes <- event:
			default:
			}
			return nil
		}))
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			for _, cancel := range cancels {
				cancel()
			}
		}()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case <-h.shutdown.Done():
				return
			case event := <-changes:
				payload, err := json.Marshal(event)
				if err != nil {
					h.logger.Warn("failed to encode change event", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", event.ID, payload)
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
