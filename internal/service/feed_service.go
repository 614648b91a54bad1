package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/feed"
	"github.com/gitanomongolomon/gmm-site/internal/markdown"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// PostDetail is a post with its body rendered to HTML.
type PostDetail struct {
	Post domain.UpdatePost
	HTML string
}

// FeedService serves the public update feed.
type FeedService struct {
	updates repository.UpdateRepository
	now     func() time.Time
}

// NewFeedService builds the feed. A nil repository answers NOT_CONFIGURED.
func NewFeedService(updates repository.UpdateRepository) *FeedService {
	return &FeedService{updates: updates, now: time.Now}
}

// Configured reports whether a record store is wired.
func (s *FeedService) Configured() bool {
	return s.updates != nil
}

// List returns every post newest first.
func (s *FeedService) List(ctx context.Context) ([]domain.UpdatePost, error) {
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	posts, err := s.updates.List(ctx, 0)
	if err != nil {
		return nil, storeError("update", err)
	}
	return posts, nil
}

// Latest returns the newest post, or nil when there are none.
func (s *FeedService) Latest(ctx context.Context) (*domain.UpdatePost, error) {
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	posts, err := s.updates.List(ctx, 1)
	if err != nil {
		return nil, storeError("update", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// Banner evaluates the announcement for the newest post.
func (s *FeedService) Banner(ctx context.Context) (feed.Banner, error) {
	latest, err := s.Latest(ctx)
	if err != nil {
		return feed.Banner{}, err
	}
	return feed.Evaluate(latest, s.now()), nil
}

// BySlug finds a post whose slug matches key exactly.
func (s *FeedService) BySlug(ctx context.Context, key string) (*domain.UpdatePost, error) {
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	post, err := s.updates.GetBySlug(ctx, key)
	if err != nil {
		return nil, storeError("update", err)
	}
	return post, nil
}

// Lookup finds a post by slug, falling back to a numeric id.
func (s *FeedService) Lookup(ctx context.Context, key string) (*domain.UpdatePost, error) {
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	post, err := s.updates.GetBySlug(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		id, convErr := strconv.ParseInt(key, 10, 64)
		if convErr != nil {
			return nil, apperrors.NewNotFound("update", map[string]any{"slug": key})
		}
		post, err = s.updates.GetByID(ctx, id)
	}
	if err != nil {
		return nil, storeError("update", err)
	}
	return post, nil
}

// Detail returns a post with rendered body.
func (s *FeedService) Detail(ctx context.Context, key string) (*PostDetail, error) {
	post, err := s.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &PostDetail{Post: *post, HTML: html}, nil
}
