package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/api/dto"
	"github.com/gitanomongolomon/gmm-site/internal/console"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// Client talks to the site API on behalf of an operator.
type Client struct {
	base   string
	token  string
	client *http.Client
}

// New creates a client for base, authenticating with token when set.
func New(base, token string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken replaces the session token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// HasToken reports whether the client carries a session token.
func (c *Client) HasToken() bool {
	return c.token != ""
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("site API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError("failed to read response", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &apperrors.DomainError{Code: codeForStatus(resp.StatusCode), Message: strings.TrimSpace(string(raw)), HTTPStatus: resp.StatusCode}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		domainErr := &apperrors.DomainError{Code: codeForStatus(resp.StatusCode), Message: resp.Status, HTTPStatus: resp.StatusCode}
		if env.Error != nil {
			domainErr.Code, domainErr.Message, domainErr.Details = env.Error.Code, env.Error.Message, env.Error.Details
		}
		return domainErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// codeForStatus names a failure whose body carried no error code.
func codeForStatus(status int) string {
	if status == http.StatusUnauthorized {
		return apperrors.CodeUnauthorized
	}
	return apperrors.CodeUpstream
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// Login exchanges the admin password for a session token and keeps it on the client.
func (c *Client) Login(ctx context.Context, password string) (dto.SessionResponse, error) {
	var session dto.SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", dto.LoginRequest{Password: password}, &session); err != nil {
		return dto.SessionResponse{}, err
	}
	c.token = session.Token
	return session, nil
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
	c.token = ""
	return err
}

// Session reports the current session.
func (c *Client) Session(ctx context.Context) (dto.SessionResponse, error) {
	var session dto.SessionResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/session", nil, &session)
	return session, err
}

// ListTickets implements console.TicketStore.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var resp []dto.TicketResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/tickets", nil, &resp); err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(resp))
	for _, t := range resp {
		tickets = append(tickets, t.Domain())
	}
	return tickets, nil
}

// SetTicketStatus implements console.TicketStore.
func (c *Client) SetTicketStatus(ctx context.Context, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	var resp dto.TicketResponse
	path := "/api/admin/tickets/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.doJSON(ctx, http.MethodPost, path, dto.TicketStatusRequest{Status: status}, &resp); err != nil {
		return nil, err
	}
	ticket := resp.Domain()
	return &ticket, nil
}

// DeleteTicket implements console.TicketStore.
func (c *Client) DeleteTicket(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/tickets/"+strconv.FormatInt(id, 10), nil, nil)
}

// ListUpdates implements console.UpdateStore.
func (c *Client) ListUpdates(ctx context.Context) ([]domain.UpdatePost, error) {
	var resp []dto.UpdateResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/updates", nil, &resp); err != nil {
		return nil, err
	}
	posts := make([]domain.UpdatePost, 0, len(resp))
	for _, p := range resp {
		posts = append(posts, p.Domain())
	}
	return posts, nil
}

// CreateUpdate implements console.UpdateStore.
func (c *Client) CreateUpdate(ctx context.Context, payload console.DraftPayload) (*domain.UpdatePost, error) {
	return c.saveUpdate(ctx, http.MethodPost, "/api/admin/updates", payload)
}

// EditUpdate implements console.UpdateStore.
func (c *Client) EditUpdate(ctx context.Context, id int64, payload console.DraftPayload) (*domain.UpdatePost, error) {
	return c.saveUpdate(ctx, http.MethodPatch, "/api/admin/updates/"+strconv.FormatInt(id, 10), payload)
}

func (c *Client) saveUpdate(ctx context.Context, method, path string, payload console.DraftPayload) (*domain.UpdatePost, error) {
	req := dto.UpdateRequest{
		Title:    payload.Title,
		Slug:     payload.Slug,
		Content:  payload.Content,
		ImageURL: payload.ImageURL,
	}
	var resp dto.UpdateResponse
	if err := c.doJSON(ctx, method, path, req, &resp); err != nil {
		return nil, err
	}
	post := resp.Domain()
	return &post, nil
}

// DeleteUpdate implements console.UpdateStore.
func (c *Client) DeleteUpdate(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/updates/"+strconv.FormatInt(id, 10), nil, nil)
}

// UploadImage implements console.UpdateStore.
func (c *Client) UploadImage(ctx context.Context, name string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, body); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}
	var resp dto.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/uploads", &buf, form.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// LatestUpdate implements console.LatestSource.
func (c *Client) LatestUpdate(ctx context.Context) (*domain.UpdatePost, error) {
	var resp *dto.UpdateResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/updates/latest", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	post := resp.Domain()
	return &post, nil
}

// Chat asks the site assistant.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	var resp dto.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", dto.ChatRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}
