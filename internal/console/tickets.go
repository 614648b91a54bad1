package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

// TicketPollInterval is how often the triage list is refetched while running.
const TicketPollInterval = 15 * time.Second

var (
	// ErrCancelled is returned when the operator declines a confirmation.
	ErrCancelled = errors.New("action cancelled")
	// ErrUnknownTicket is returned for ids missing from the local list.
	ErrUnknownTicket = errors.New("ticket not in local list")
)

// TicketStore is the remote side of the triage console.
type TicketStore interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	SetTicketStatus(ctx context.Context, id int64, status domain.TicketStatus) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, id int64) error
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer func(ticket domain.Ticket, action domain.TicketAction) bool

// TicketFilter narrows the local list. Zero values match everything.
type TicketFilter struct {
	Status domain.TicketStatus
	Query  string
}

// TicketConsole keeps the operator's local copy of the tickets and drives their lifecycle.
// Remote writes land in the local list only after the store confirms them.
type TicketConsole struct {
	store   TicketStore
	confirm Confirmer
	runner  *runner

	mu      sync.RWMutex
	tickets []domain.Ticket
}

// NewTicketConsole builds a console. A nil confirmer declines every destructive action.
func NewTicketConsole(store TicketStore, confirm Confirmer, interval time.Duration, logger *zap.Logger) *TicketConsole {
	if interval <= 0 {
		interval = TicketPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &TicketConsole{store: store, confirm: confirm}
	c.runner = &runner{name: "tickets", refresh: c.Refresh, interval: interval, logger: logger}
	return c
}

// Refresh replaces the local list with the remote collection. A result that arrives after
// ctx is cancelled is discarded.
func (c *TicketConsole) Refresh(ctx context.Context) error {
	tickets, err := c.store.ListTickets(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.tickets = append([]domain.Ticket(nil), tickets...)
	c.mu.Unlock()
	return nil
}

// Start polls in the background until Stop or ctx cancellation.
func (c *TicketConsole) Start(ctx context.Context) {
	c.runner.start(ctx)
}

// Stop halts polling and waits for the poller to exit.
func (c *TicketConsole) Stop() {
	c.runner.stop()
}

// Running reports whether polling is active.
func (c *TicketConsole) Running() bool {
	return c.runner.running()
}

// SessionEnded is closed when polling stopped because the store rejected the session.
func (c *TicketConsole) SessionEnded() <-chan struct{} {
	return c.runner.sessionEnded()
}

// Notify requests an immediate refresh after a change notification. It is ignored while stopped.
func (c *TicketConsole) Notify() {
	c.runner.trigger()
}

// Tickets returns a copy of the local list.
func (c *TicketConsole) Tickets() []domain.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Ticket(nil), c.tickets...)
}

// View applies filter to the local list.
func (c *TicketConsole) View(filter TicketFilter) []domain.Ticket {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := []domain.Ticket{}
	for _, t := range c.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if query != "" && !matchesTicket(t, query) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func matchesTicket(t domain.Ticket, query string) bool {
	return strings.Contains(strings.ToLower(t.DiscordTag), query) ||
		strings.Contains(strings.ToLower(t.Description), query) ||
		strings.Contains(strings.ToLower(string(t.Category)), query)
}

// Apply runs action on ticket id. Destructive actions ask the confirmer first; a declined
// confirmation returns ErrCancelled without contacting the store.
func (c *TicketConsole) Apply(ctx context.Context, id int64, action domain.TicketAction) error {
	ticket, ok := c.find(id)
	if !ok {
		return ErrUnknownTicket
	}
	next, err := domain.NextStatus(ticket.Status, action)
	if err != nil {
		return err
	}
	if action.RequiresConfirmation() && (c.confirm == nil || !c.confirm(ticket, action)) {
		return ErrCancelled
	}

	if action == domain.TicketActionDelete {
		if err := c.store.DeleteTicket(ctx, id); err != nil {
			return err
		}
		c.remove(id)
		return nil
	}

	updated, err := c.store.SetTicketStatus(ctx, id, next)
	if err != nil {
		return err
	}
	if updated != nil && updated.Status != "" {
		next = updated.Status
	}
	c.setStatus(id, next)
	return nil
}

func (c *TicketConsole) find(id int64) (domain.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

func (c *TicketConsole) setStatus(id int64, status domain.TicketStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tickets {
		if c.tickets[i].ID == id {
			c.tickets[i].Status = status
			return
		}
	}
}

func (c *TicketConsole) remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tickets {
		if c.tickets[i].ID == id {
			c.tickets = append(c.tickets[:i:i], c.tickets[i+1:]...)
			return
		}
	}
}
