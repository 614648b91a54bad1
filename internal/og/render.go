package og

import (
	"io"
	"net/url"
	"strings"
	"text/template"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

// ExcerptLength is the number of body characters used as the preview description.
const ExcerptLength = 200

// DefaultImagePath is served when a post has no image.
const DefaultImagePath = "/og-default.png"

const (
	fallbackTitle      = "Nueva actualización"
	fallbackBatchTitle = "Actualización"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape makes s safe inside element text and double- or single-quoted attributes.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Excerpt returns the first ExcerptLength characters of content.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return string(runes)
}

// AbsoluteURL resolves u against origin unless it already carries an http(s) scheme.
func AbsoluteURL(u, origin string) string {
	if u == "" {
		return u
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(u, "/")
}

// PostPath is the single-page route of a post.
func PostPath(key string) string {
	return "/updates/" + url.PathEscape(key)
}

// Page holds the already-escaped values of a preview document.
type Page struct {
	Title       string
	Description string
	Image       string
	URL         string
	Canonical   string
	Redirect    string
}

// PostPage builds the preview served per request: every URL is absolute.
func PostPage(post *domain.UpdatePost, origin string) Page {
	origin = strings.TrimRight(origin, "/")
	title := post.Title
	if title == "" {
		title = fallbackTitle
	}
	image := origin + DefaultImagePath
	if post.ImageURL != "" {
		image = AbsoluteURL(post.ImageURL, origin)
	}
	postURL := origin + PostPath(post.PathKey())
	return Page{
		Title:       Escape(title),
		Description: Escape(Excerpt(post.Content)),
		Image:       Escape(image),
		URL:         Escape(postURL),
		Canonical:   Escape(postURL),
		Redirect:    Escape(postURL),
	}
}

// StaticPage builds the preview written to disk: links stay site-relative so the file works
// under any host, and only og:url carries the origin.
func StaticPage(post *domain.UpdatePost, origin string) Page {
	origin = strings.TrimRight(origin, "/")
	title := post.Title
	if title == "" {
		title = fallbackBatchTitle
	}
	image := DefaultImagePath
	if post.ImageURL != "" {
		switch {
		case origin != "":
			image = AbsoluteURL(post.ImageURL, origin)
		case strings.HasPrefix(post.ImageURL, "/"):
			image = post.ImageURL
		default:
			image = AbsoluteURL(post.ImageURL, "")
		}
	}
	postPath := PostPath(post.PathKey())
	return Page{
		Title:       Escape(title),
		Description: Escape(Excerpt(post.Content)),
		Image:       Escape(image),
		URL:         Escape(origin + postPath),
		Canonical:   Escape(postPath),
		Redirect:    Escape(postPath),
	}
}

var postTemplate = template.Must(template.New("post").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="robots" content="index,follow" />
  <meta property="og:type" content="article" />
  <meta property="og:title" content="{{.Title}}" />
  <meta property="og:description" content="{{.Description}}" />
  <meta property="og:image" content="{{.Image}}" />
  <meta property="og:url" content="{{.URL}}" />
  <meta name="twitter:card" content="summary_large_image" />
  <meta name="twitter:title" content="{{.Title}}" />
  <meta name="twitter:description" content="{{.Description}}" />
  <meta name="twitter:image" content="{{.Image}}" />
  <link rel="canonical" href="{{.Canonical}}" />
  <meta http-equiv="refresh" content="0;url={{.Redirect}}" />
  <title>{{.Title}}</title>
</head>
<body>
  Redirecting to <a href="{{.Redirect}}">{{.Redirect}}</a>
</body>
</html>
`))

var redirectTemplate = template.Must(template.New("redirect").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0;url={{.}}">
<title>Actualización</title>
</head>
<body>Redirecting to <a href="{{.}}">{{.}}</a></body>
</html>
`))

// RenderPost writes the preview document for page.
func RenderPost(w io.Writer, page Page) error {
	return postTemplate.Execute(w, page)
}

// RenderRedirect writes the minimal document used when no post matches: it only sends the
// browser to the single-page route for key.
func RenderRedirect(w io.Writer, origin, key string) error {
	return redirectTemplate.Execute(w, Escape(strings.TrimRight(origin, "/")+PostPath(key)))
}
