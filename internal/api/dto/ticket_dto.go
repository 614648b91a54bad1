package dto

import (
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

// CreateTicketRequest is the JSON intake payload. Multipart submissions carry the same fields
// plus files under "attachments".
type CreateTicketRequest struct {
	Category    string `json:"category" form:"category"`
	DiscordTag  string `json:"discord_tag" form:"discord_tag"`
	Description string `json:"description" form:"description"`
}

// TicketStatusRequest moves a ticket to a new status.
type TicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID             int64                 `json:"id"`
	Category       domain.TicketCategory `json:"category"`
	DiscordTag     string                `json:"discord_tag"`
	Description    string                `json:"description"`
	AttachmentURLs []string              `json:"attachment_urls"`
	Status         domain.TicketStatus   `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
}

// NewTicketResponse converts a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	urls := t.AttachmentURLs
	if urls == nil {
		urls = []string{}
	}
	return TicketResponse{
		ID:             t.ID,
		Category:       t.Category,
		DiscordTag:     t.DiscordTag,
		Description:    t.Description,
		AttachmentURLs: urls,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
	}
}

// NewTicketList converts a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// Domain converts the wire form back to a domain ticket.
func (r TicketResponse) Domain() domain.Ticket {
	return domain.Ticket{
		ID:             r.ID,
		Category:       r.Category,
		DiscordTag:     r.DiscordTag,
		Description:    r.Description,
		AttachmentURLs: r.AttachmentURLs,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
}
