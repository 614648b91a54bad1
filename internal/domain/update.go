package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// BannerWindow is how long a freshly published update is advertised.
const BannerWindow = 72 * time.Hour

// UpdatePost is a news entry shown in the public feed.
type UpdatePost struct {
	ID        int64
	Title     string
	Slug      string
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// IsFresh reports whether the post was created within window of now.
func (p *UpdatePost) IsFresh(now time.Time, window time.Duration) bool {
	if p == nil || p.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(p.CreatedAt) < window
}

// PathKey returns the identifier used in public URLs: the slug, or the id when no slug is set.
func (p *UpdatePost) PathKey() string {
	if p.Slug != "" {
		return p.Slug
	}
	return strconv.FormatInt(p.ID, 10)
}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\-_.]`)
	dashRun        = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe slug from a title. Applying it to its own output is a no-op.
func Slugify(title string) string {
	s := norm.NFKD.String(title)
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = slugDisallowed.ReplaceAllString(s, "")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
