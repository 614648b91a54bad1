package service

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/blob"
	"github.com/gitanomongolomon/gmm-site/internal/domain"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// ImageSignedURLTTL is the lifetime of signed post image URLs when the bucket is private.
const ImageSignedURLTTL = 7 * 24 * time.Hour

// ImageUpload is an image file attached to a post.
type ImageUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UpdateInput carries the fields of a post save. Nil fields are not sent to the store.
type UpdateInput struct {
	Title    *string
	Slug     *string
	Content  *string
	ImageURL *string
	Image    *ImageUpload
}

// UpdateService coordinates update post authoring.
type UpdateService struct {
	updates repository.UpdateRepository
	blobs   blob.Store
	bucket  string
	logger  *zap.Logger
	now     func() time.Time
}

// UpdateDependencies bundles collaborators for the update service.
type UpdateDependencies struct {
	UpdateRepo repository.UpdateRepository
	Blobs      blob.Store
	Bucket     string
	Logger     *zap.Logger
}

// NewUpdateService wires the service. A nil repository answers NOT_CONFIGURED.
func NewUpdateService(deps UpdateDependencies) *UpdateService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateService{
		updates: deps.UpdateRepo,
		blobs:   deps.Blobs,
		bucket:  deps.Bucket,
		logger:  logger,
		now:     time.Now,
	}
}

// UploadImage stores an image and returns the URL to save with the post: the public URL when
// the bucket is public, otherwise a URL signed for ImageSignedURLTTL.
func (s *UpdateService) UploadImage(ctx context.Context, img ImageUpload) (string, error) {
	if s.blobs == nil {
		return "", apperrors.NewNotConfigured(blobStore)
	}
	obj, err := s.blobs.Upload(ctx, s.bucket, blob.ImagePath(s.now(), img.Name), img.Body, img.ContentType)
	if err != nil {
		return "", apperrors.NewUpstreamError("image upload failed; check the storage bucket policy", err)
	}
	url, err := blob.ResolveURL(ctx, s.blobs, obj, ImageSignedURLTTL)
	if err != nil {
		return "", apperrors.NewUpstreamError("could not resolve image URL", err)
	}
	return url, nil
}

// Create inserts a post. Title and body are required; the slug is derived from the title
// when not supplied.
func (s *UpdateService) Create(ctx context.Context, in UpdateInput) (*domain.UpdatePost, error) {
	post := &domain.UpdatePost{
		Title:   strings.TrimSpace(deref(in.Title)),
		Content: strings.TrimSpace(deref(in.Content)),
	}
	if post.Title == "" || post.Content == "" {
		return nil, apperrors.NewValidationError("title and content are required", nil)
	}
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	post.Slug = domain.Slugify(deref(in.Slug))
	if post.Slug == "" {
		post.Slug = domain.Slugify(post.Title)
	}
	post.ImageURL = strings.TrimSpace(deref(in.ImageURL))
	if in.Image != nil {
		url, err := s.UploadImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	}

	if err := s.updates.Create(ctx, post); err != nil {
		return nil, updateStoreError(post.Slug, err)
	}
	s.logger.Info("update published", zap.Int64("update_id", post.ID), zap.String("slug", post.Slug))
	return post, nil
}

// Update applies a partial change to post id and returns the stored result.
func (s *UpdateService) Update(ctx context.Context, id int64, in UpdateInput) (*domain.UpdatePost, error) {
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	patch := repository.UpdatePatch{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		patch.Title = &title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, apperrors.NewValidationError("content cannot be empty", nil)
		}
		patch.Content = &content
	}
	if in.Slug != nil {
		if slug := domain.Slugify(*in.Slug); slug != "" {
			patch.Slug = &slug
		}
	}
	if in.ImageURL != nil {
		if url := strings.TrimSpace(*in.ImageURL); url != "" {
			patch.ImageURL = &url
		}
	}
	if in.Image != nil {
		url, err := s.UploadImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}

	if err := s.updates.Update(ctx, id, patch); err != nil {
		return nil, updateStoreError(deref(patch.Slug), err)
	}
	post, err := s.updates.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("update", err)
	}
	s.logger.Info("update edited", zap.Int64("update_id", id))
	return post, nil
}

// Delete removes post id.
func (s *UpdateService) Delete(ctx context.Context, id int64) error {
	if s.updates == nil {
		return apperrors.NewNotConfigured(recordStore)
	}
	if err := s.updates.Delete(ctx, id); err != nil {
		return storeError("update", err)
	}
	s.logger.Info("update deleted", zap.Int64("update_id", id))
	return nil
}

// List returns posts newest first.
func (s *UpdateService) List(ctx context.Context) ([]domain.UpdatePost, error) {
	if s.updates == nil {
		return nil, apperrors.NewNotConfigured(recordStore)
	}
	posts, err := s.updates.List(ctx, 0)
	if err != nil {
		return nil, storeError("update", err)
	}
	return posts, nil
}

func updateStoreError(slug string, err error) error {
	if kind, _ := repository.KindOf(err); kind == repository.KindUniqueViolation {
		return apperrors.NewSlugTaken(slug)
	}
	return storeError("update", err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
