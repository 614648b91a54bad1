package markdown

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// The goldmark instance is safe to share; each Parse call carries its own state.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		// Raw HTML in post bodies is dropped because the unsafe renderer option is never set.
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownInstance
}

// ToHTML renders a post body to HTML.
func ToHTML(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var bareURL = regexp.MustCompile(`(?i)https?://[^\s)]+`)

// FirstLink returns the first http(s) link in a post body. An explicit [text](url) link wins
// over a bare URL anywhere in the raw body, code spans included. Bare "www." text is not a
// link. It returns "" when the body has no link.
func FirstLink(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	document := getMarkdown().Parser().Parse(text.NewReader(src))

	var explicit string
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n, ok := node.(*ast.Link); ok && isHTTP(string(n.Destination)) {
			explicit = string(n.Destination)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if explicit != "" {
		return explicit
	}
	return bareURL.FindString(source)
}

func isHTTP(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
