package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/api/dto"
	"github.com/gitanomongolomon/gmm-site/internal/service"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// TicketsHandler manages ticket intake and triage endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Submit POST /api/tickets (JSON or multipart with "attachments" files).
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	submission := service.TicketSubmission{
		Category:    req.Category,
		DiscordTag:  req.DiscordTag,
		Description: req.Description,
	}

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return apperrors.NewValidationError("invalid multipart form", nil)
		}
		for _, fh := range form.File["attachments"] {
			f, err := fh.Open()
			if err != nil {
				return apperrors.NewValidationError("unreadable attachment", map[string]any{"file": fh.Filename})
			}
			defer f.Close()
			submission.Attachments = append(submission.Attachments, service.Attachment{
				Name:        fh.Filename,
				ContentType: fileContentType(fh),
				Body:        f,
			})
		}
	}

	ticket, err := h.service.SubmitTicket(c.UserContext(), submission)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List GET /api/admin/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// SetStatus POST /api/admin/tickets/:id/status.
func (h *TicketsHandler) SetStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.TicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Delete DELETE /api/admin/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
