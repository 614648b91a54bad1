package og

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
)

const writeConcurrency = 8

// PostLister lists update posts newest first; a non-positive limit lists all.
type PostLister interface {
	List(ctx context.Context, limit int) ([]domain.UpdatePost, error)
}

// Generator writes a static preview page for every post.
type Generator struct {
	posts  PostLister
	origin string
	logger *zap.Logger
}

// NewGenerator builds a batch generator.
func NewGenerator(posts PostLister, origin string, logger *zap.Logger) *Generator {
	return &Generator{posts: posts, origin: origin, logger: logger}
}

// Generate writes <outDir>/updates/<slug-or-id>/index.html for each post and returns how many
// pages were written.
func (g *Generator) Generate(ctx context.Context, outDir string) (int, error) {
	posts, err := g.posts.List(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list posts: %w", err)
	}
	if len(posts) == 0 {
		g.logger.Info("no posts found for preview generation")
		return 0, nil
	}

	root := filepath.Join(outDir, "updates")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(writeConcurrency)
	for i := range posts {
		post := posts[i]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writePage(root, &post)
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	g.logger.Info("preview generation complete", zap.Int("pages", len(posts)))
	return len(posts), nil
}

func (g *Generator) writePage(root string, post *domain.UpdatePost) error {
	key := post.PathKey()
	name := filepath.Base(filepath.Clean("/" + key))
	if name == string(filepath.Separator) || name == "." {
		name = strconv.FormatInt(post.ID, 10)
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := RenderPost(&buf, StaticPage(post, g.origin)); err != nil {
		return fmt.Errorf("render %s: %w", key, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), buf.Bytes(), 0o644); err != nil {
		return err
	}
	g.logger.Debug("generated preview page", zap.String("post", key))
	return nil
}
