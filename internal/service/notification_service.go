package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/config"
	"github.com/gitanomongolomon/gmm-site/internal/events"
)

// NotificationService reacts to record changes: it logs them and forwards new tickets to the
// operator webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	client     *http.Client
	cancels    []events.CancelFunc
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterHandlers subscribes to change events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.cancels = append(n.cancels,
		n.dispatcher.Subscribe(events.CollectionTickets, n.handleTicketChange),
		n.dispatcher.Subscribe(events.CollectionUpdates, n.handleUpdateChange),
	)
}

// Close removes the subscriptions.
func (n *NotificationService) Close() {
	for _, cancel := range n.cancels {
		cancel()
	}
	n.cancels = nil
}

func (n *NotificationService) handleTicketChange(ctx context.Context, event events.ChangeEvent) error {
	n.logger.Info("TicketChanged", zap.Int64("ticket_id", event.RecordID), zap.String("op", string(event.Op)))
	if event.Op != events.OpInsert {
		return nil
	}
	if err := n.sendWebhook(ctx, event); err != nil {
		n.logger.Warn("ticket webhook failed", zap.Int64("ticket_id", event.RecordID), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleUpdateChange(ctx context.Context, event events.ChangeEvent) error {
	n.logger.Info("UpdateChanged", zap.Int64("update_id", event.RecordID), zap.String("op", string(event.Op)))
	return nil
}

type webhookMessage struct {
	Content string `json:"content"`
}

// sendWebhook posts a Discord-compatible message announcing a new ticket.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.ChangeEvent) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	payload, err := json.Marshal(webhookMessage{
		Content: fmt.Sprintf("Nuevo ticket #%d recibido.", event.RecordID),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
