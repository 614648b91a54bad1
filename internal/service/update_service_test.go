package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitanomongolomon/gmm-site/internal/blob"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

func ptr(s string) *string { return &s }

func TestCreateDerivesSlug(t *testing.T) {
	repo := &fakeUpdateRepo{}
	svc := NewUpdateService(UpdateDependencies{UpdateRepo: repo})

	post, err := svc.Create(context.Background(), UpdateInput{Title: ptr("Nuevo Update!! 2025"), Content: ptr("cuerpo")})
	require.NoError(t, err)
	assert.Equal(t, "nuevo-update-2025", post.Slug)
	assert.NotZero(t, post.ID)

	post, err = svc.Create(context.Background(), UpdateInput{Title: ptr("Otro"), Slug: ptr("Mi Slug"), Content: ptr("x")})
	require.NoError(t, err)
	assert.Equal(t, "mi-slug", post.Slug)
}

func TestCreateRequiresTitleAndContent(t *testing.T) {
	svc := NewUpdateService(UpdateDependencies{UpdateRepo: &fakeUpdateRepo{}})

	_, err := svc.Create(context.Background(), UpdateInput{Title: ptr("solo título")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc := NewUpdateService(UpdateDependencies{UpdateRepo: &fakeUpdateRepo{}})
	_, err := svc.Create(context.Background(), UpdateInput{Title: ptr("Parche"), Content: ptr("a")})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), UpdateInput{Title: ptr("Parche"), Content: ptr("b")})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeSlugTaken, domainErr.Code)
	assert.Equal(t, "parche", domainErr.Details["slug"])
}

func TestStoreErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"missing column", &repository.StoreError{Kind: repository.KindUndefinedColumn, Column: "image_url", Err: &pgconn.PgError{Code: "42703"}}, apperrors.CodeSchemaMismatch},
		{"policy", &repository.StoreError{Kind: repository.KindPermissionDenied, Err: &pgconn.PgError{Code: "42501"}}, apperrors.CodePermissionDenied},
		{"not found", repository.ErrNotFound, apperrors.CodeNotFound},
		{"other", &repository.StoreError{Kind: repository.KindUnknown, Err: &pgconn.PgError{Code: "08006"}}, apperrors.CodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUpdateService(UpdateDependencies{UpdateRepo: &fakeUpdateRepo{err: tt.err}})
			_, err := svc.Create(context.Background(), UpdateInput{Title: ptr("t"), Content: ptr("c")})
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSchemaMismatchNamesColumn(t *testing.T) {
	err := storeError("update", &repository.StoreError{Kind: repository.KindUndefinedColumn, Column: "image_url", Err: &pgconn.PgError{Code: "42703"}})
	assert.Contains(t, err.Error(), `"image_url"`)
}

func TestUpdatePartial(t *testing.T) {
	repo := &fakeUpdateRepo{}
	svc := NewUpdateService(UpdateDependencies{UpdateRepo: repo})
	created, err := svc.Create(context.Background(), UpdateInput{Title: ptr("Inicial"), Content: ptr("uno"), ImageURL: ptr("https://img.example/a.png")})
	require.NoError(t, err)

	post, err := svc.Update(context.Background(), created.ID, UpdateInput{Content: ptr("dos"), ImageURL: ptr(""), Slug: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Inicial", post.Title)
	assert.Equal(t, "dos", post.Content)
	assert.Equal(t, "inicial", post.Slug, "an empty slug leaves the stored one")
	assert.Equal(t, "https://img.example/a.png", post.ImageURL, "an empty image never clears the stored one")

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Title: ptr(" ")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.Update(context.Background(), 404, UpdateInput{Content: ptr("x")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUploadImage(t *testing.T) {
	private := blob.NewMemoryStore("https://cdn.example", false)
	svc := NewUpdateService(UpdateDependencies{UpdateRepo: &fakeUpdateRepo{}, Blobs: private, Bucket: "updates"})

	url, err := svc.UploadImage(context.Background(), ImageUpload{Name: "mi portada.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example/updates/updates/"))
	assert.Contains(t, url, "_mi_portada.png?expires=")

	_, err = NewUpdateService(UpdateDependencies{}).UploadImage(context.Background(), ImageUpload{Name: "a.png", Body: strings.NewReader("")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotConfigured))

	failing := NewUpdateService(UpdateDependencies{Blobs: failingBlobs{}})
	_, err = failing.UploadImage(context.Background(), ImageUpload{Name: "a.png", Body: strings.NewReader("")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstream))
}

func TestCreateWithImageUpload(t *testing.T) {
	store := blob.NewMemoryStore("https://cdn.example", true)
	svc := NewUpdateService(UpdateDependencies{UpdateRepo: &fakeUpdateRepo{}, Blobs: store, Bucket: "updates"})

	post, err := svc.Create(context.Background(), UpdateInput{
		Title:   ptr("Con imagen"),
		Content: ptr("c"),
		Image:   &ImageUpload{Name: "cover.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpg")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(post.ImageURL, "https://cdn.example/updates/updates/"))
}
