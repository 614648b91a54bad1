package feed

import (
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/markdown"
)

// Banner is the "new update" announcement derived from the newest post.
type Banner struct {
	Post        *domain.UpdatePost
	Visible     bool
	DownloadURL string
}

// Evaluate decides whether latest is still announced at now. A nil post yields a hidden banner.
func Evaluate(latest *domain.UpdatePost, now time.Time) Banner {
	if latest == nil {
		return Banner{}
	}
	return Banner{
		Post:        latest,
		Visible:     latest.IsFresh(now, domain.BannerWindow),
		DownloadURL: DownloadTarget(latest),
	}
}

// DownloadTarget picks the link behind the banner's download control: an explicit link in
// the body, then a bare URL in the body, then the post image. "" disables the control.
func DownloadTarget(post *domain.UpdatePost) string {
	if post == nil {
		return ""
	}
	if link := markdown.FirstLink(post.Content); link != "" {
		return link
	}
	return post.ImageURL
}
