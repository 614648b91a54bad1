package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/api/dto"
	"github.com/gitanomongolomon/gmm-site/internal/service"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// UpdatesHandler serves the public feed and the authoring endpoints.
type UpdatesHandler struct {
	feed    *service.FeedService
	updates *service.UpdateService
}

// NewUpdatesHandler constructs handler.
func NewUpdatesHandler(feed *service.FeedService, updates *service.UpdateService) *UpdatesHandler {
	return &UpdatesHandler{feed: feed, updates: updates}
}

// List GET /api/updates.
func (h *UpdatesHandler) List(c *fiber.Ctx) error {
	posts, err := h.feed.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUpdateList(posts)})
}

// Latest GET /api/updates/latest. Data is null when there are no posts.
func (h *UpdatesHandler) Latest(c *fiber.Ctx) error {
	post, err := h.feed.Latest(c.UserContext())
	if err != nil {
		return err
	}
	if post == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.NewUpdateResponse(post)})
}

// Detail GET /api/updates/:slug.
func (h *UpdatesHandler) Detail(c *fiber.Ctx) error {
	detail, err := h.feed.Detail(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UpdateDetailResponse{
		UpdateResponse: dto.NewUpdateResponse(&detail.Post),
		HTML:           detail.HTML,
	}})
}

// Banner GET /api/banner.
func (h *UpdatesHandler) Banner(c *fiber.Ctx) error {
	banner, err := h.feed.Banner(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBannerResponse(banner)})
}

// AdminList GET /api/admin/updates.
func (h *UpdatesHandler) AdminList(c *fiber.Ctx) error {
	posts, err := h.updates.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUpdateList(posts)})
}

// Create POST /api/admin/updates (JSON or multipart with an "image" file).
func (h *UpdatesHandler) Create(c *fiber.Ctx) error {
	input, closeFn, err := parseUpdateInput(c)
	if err != nil {
		return err
	}
	defer closeFn()
	post, err := h.updates.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUpdateResponse(post)})
}

// Edit PATCH /api/admin/updates/:id.
func (h *UpdatesHandler) Edit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	input, closeFn, err := parseUpdateInput(c)
	if err != nil {
		return err
	}
	defer closeFn()
	post, err := h.updates.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUpdateResponse(post)})
}

// Delete DELETE /api/admin/updates/:id.
func (h *UpdatesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.updates.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Upload POST /api/admin/uploads with an "image" file.
func (h *UpdatesHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file is required", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable image", nil)
	}
	defer f.Close()
	url, err := h.updates.UploadImage(c.UserContext(), service.ImageUpload{
		Name:        fh.Filename,
		ContentType: fileContentType(fh),
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{URL: url}})
}

func parseUpdateInput(c *fiber.Ctx) (service.UpdateInput, func(), error) {
	noop := func() {}
	var req dto.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return service.UpdateInput{}, noop, apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.UpdateInput{
		Title:    req.Title,
		Slug:     req.Slug,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if !isMultipart(c) {
		return input, noop, nil
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return input, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return service.UpdateInput{}, noop, apperrors.NewValidationError("unreadable image", nil)
	}
	input.Image = &service.ImageUpload{Name: fh.Filename, ContentType: fileContentType(fh), Body: f}
	return input, func() { _ = f.Close() }, nil
}
