package blob

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// AttachmentPath names a ticket attachment: a millisecond timestamp, a random suffix and the
// original extension.
func AttachmentPath(now time.Time, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	ext = unsafeNameChars.ReplaceAllString(ext, "")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("tickets/%d-%s%s", now.UnixMilli(), suffix, ext)
}

// ImagePath names an update post image, keeping a sanitized copy of the original file name.
func ImagePath(now time.Time, original string) string {
	name := unsafeNameChars.ReplaceAllString(filepath.Base(original), "_")
	if name == "" || name == "." || name == "_" {
		name = "image"
	}
	return fmt.Sprintf("updates/%d_%s", now.UnixMilli(), name)
}
