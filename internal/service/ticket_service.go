package service

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/blob"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// MaxAttachments caps the files accepted with one ticket.
const MaxAttachments = 10

// Attachment is a file submitted with a ticket.
type Attachment struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// TicketSubmission is the public intake payload.
type TicketSubmission struct {
	Category    string
	DiscordTag  string
	Description string
	Attachments []Attachment
}

// TicketService coordinates ticket intake and triage.
type TicketService struct {
	tickets repository.TicketRepository
	blobs   blob.Store
	bucket  string
	urlTTL  time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	Blobs        blob.Store
	Bucket       string
	SignedURLTTL time.Duration
	Logger       *zap.Logger
}

// NewTicketService wires the service. A nil repository answers NOT_CONFIGURED.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets: deps.TicketRepo,
		blobs:   deps.Blobs,
		bucket:  deps.Bucket,
		urlTTL:  deps.SignedURLTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// SubmitTicket validates the submission, uploads every attachment and stores an open ticket.
// A failed upload aborts before anything is inserted.
func (s *TicketService) SubmitTicket(ctx context.Context, in TicketSubmission) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Category:    domain.TicketCategory(strings.TrimSpace(in.Category)),
		DiscordTag:  strings.TrimSpace(in.DiscordTag),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.TicketStatusOpen,
	}
	if err := validateSubmission(ticket, len(in.Attachments)); err != nil {
		return nil, err
	}
	if s.tickets == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	if len(in.Attachments) > 0 && s.blobs == nil {
		return nil, apperrors.NewNotConfigured(blobStore)
	}

	urls := make([]string, 0, len(in.Attachments))
	for _, att := range in.Attachments {
		url, err := s.upload(ctx, att)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	if len(urls) > 0 {
		ticket.AttachmentURLs = urls
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if len(urls) > 0 {
			s.logger.Warn("ticket insert failed after uploads; attachments left orphaned", zap.Strings("attachments", urls), zap.Error(err))
		}
		return nil, storeError("ticket", err)
	}
	s.logger.Info("ticket submitted", zap.Int64("ticket_id", ticket.ID), zap.String("category", string(ticket.Category)))
	return ticket, nil
}

func validateSubmission(ticket *domain.Ticket, attachments int) error {
	missing := []string{}
	if ticket.Category == "" {
		missing = append(missing, "category")
	}
	if ticket.DiscordTag == "" {
		missing = append(missing, "discord_tag")
	}
	if ticket.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("required fields are empty", map[string]any{"fields": missing})
	}
	if !ticket.Category.Valid() {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": ticket.Category, "allowed": domain.TicketCategories})
	}
	if attachments > MaxAttachments {
		return apperrors.NewValidationError("too many attachments", map[string]any{"max": MaxAttachments})
	}
	return nil
}

func (s *TicketService) upload(ctx context.Context, att Attachment) (string, error) {
	path := blob.AttachmentPath(s.now(), att.Name)
	obj, err := s.blobs.Upload(ctx, s.bucket, path, att.Body, att.ContentType)
	if err != nil {
		return "", apperrors.NewUpstreamError("attachment upload failed: "+att.Name, err)
	}
	url, err := blob.ResolveURL(ctx, s.blobs, obj, s.urlTTL)
	if err != nil {
		return "", apperrors.NewUpstreamError("could not resolve attachment URL: "+att.Name, err)
	}
	return url, nil
}

// List returns every ticket newest first.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	if s.tickets == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, storeError("ticket", err)
	}
	return tickets, nil
}

// SetStatus moves a ticket to next if the lifecycle allows it from its current status.
func (s *TicketService) SetStatus(ctx context.Context, id int64, next domain.TicketStatus) (*domain.Ticket, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": next})
	}
	if s.tickets == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("ticket", err)
	}
	if ticket.Status == next {
		return ticket, nil
	}
	action, err := domain.ActionFor(ticket.Status, next)
	if err != nil {
		return nil, apperrors.NewInvalidTransition("ticket cannot move to the requested status", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}
	if err := s.tickets.UpdateStatus(ctx, id, next); err != nil {
		return nil, storeError("ticket", err)
	}
	s.logger.Info("ticket status changed", zap.Int64("ticket_id", id), zap.String("action", string(action)), zap.String("status", string(next)))
	ticket.Status = next
	return ticket, nil
}

// Delete removes a ticket permanently.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	if s.tickets == nil {
		return apperrors.NewNotConfigured(recordStore)
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return storeError("ticket", err)
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id))
	return nil
}
