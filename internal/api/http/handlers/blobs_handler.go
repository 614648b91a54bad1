package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/blob"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// BlobsHandler serves objects held by the in-memory blob store.
type BlobsHandler struct {
	store *blob.MemoryStore
}

// NewBlobsHandler constructs handler.
func NewBlobsHandler(store *blob.MemoryStore) *BlobsHandler {
	return &BlobsHandler{store: store}
}

// Get GET /blobs/:bucket/*. Private objects need an unexpired signature.
func (h *BlobsHandler) Get(c *fiber.Ctx) error {
	bucket, path := c.Params("bucket"), c.Params("*")
	if !h.store.Public() {
		expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
		if err != nil || time.Now().Unix() > expires {
			return apperrors.NewForbidden("signed URL missing or expired")
		}
	}
	body, contentType, err := h.store.Open(bucket, path)
	if errors.Is(err, blob.ErrNotFound) {
		return apperrors.NewNotFound("object", map[string]any{"bucket": bucket, "path": path})
	}
	if err != nil {
		return err
	}
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Status(http.StatusOK).SendStream(body)
}
