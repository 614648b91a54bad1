package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/og"
	"github.com/gitanomongolomon/gmm-site/internal/service"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// OGHandler serves link-preview documents for update posts.
type OGHandler struct {
	feed   *service.FeedService
	origin string
	logger *zap.Logger
}

// NewOGHandler constructs handler.
func NewOGHandler(feed *service.FeedService, origin string, logger *zap.Logger) *OGHandler {
	return &OGHandler{feed: feed, origin: origin, logger: logger}
}

// Render GET /api/og/updates/:slug (or ?slug=). With ?debug=1 a JSON diagnostic is returned.
func (h *OGHandler) Render(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		slug = c.Query("slug")
	}
	if slug == "" {
		return c.Status(http.StatusBadRequest).SendString("Missing slug")
	}
	debug := c.Query("debug") != "" || c.Query("_debug") != ""

	if !h.feed.Configured() {
		if debug {
			return c.JSON(fiber.Map{
				"ok":                   false,
				"error":                "record store not configured on server",
				"hasRecordStore":       false,
				"siteOriginConfigured": h.origin != "",
			})
		}
		return c.Status(http.StatusInternalServerError).SendString("Record store not configured on server")
	}

	post, err := h.feed.BySlug(c.UserContext(), slug)
	found := err == nil
	if err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
		h.logger.Error("preview lookup failed", zap.String("slug", slug), zap.Error(err))
		return c.Status(http.StatusBadGateway).SendString("Failed to fetch post")
	}

	if debug {
		summary := fiber.Map{"ok": true, "slug": slug, "postFound": found, "post": nil, "siteOrigin": h.origin}
		if found {
			summary["post"] = fiber.Map{
				"id":         post.ID,
				"slug":       post.Slug,
				"title":      post.Title,
				"created_at": post.CreatedAt,
				"image_url":  post.ImageURL,
			}
		}
		return c.JSON(summary)
	}

	var buf bytes.Buffer
	if found {
		err = og.RenderPost(&buf, og.PostPage(post, h.origin))
	} else {
		err = og.RenderRedirect(&buf, h.origin, slug)
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Type("html", "utf-8")
	return c.Status(http.StatusOK).Send(buf.Bytes())
}
