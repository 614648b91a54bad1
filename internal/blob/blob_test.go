package blob

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	path := AttachmentPath(now, "Captura de Pantalla.PNG")
	assert.Regexp(t, regexp.MustCompile(`^tickets/1700000000123-[0-9a-f]{8}\.png$`), path)

	assert.NotEqual(t, path, AttachmentPath(now, "Captura de Pantalla.PNG"), "names stay unique within one millisecond")
	assert.Regexp(t, regexp.MustCompile(`^tickets/1700000000123-[0-9a-f]{8}$`), AttachmentPath(now, "sin-extension"))
}

func TestImagePath(t *testing.T) {
	now := time.UnixMilli(42)
	assert.Equal(t, "updates/42_mi_portada_.png", ImagePath(now, "mi portada!.png"))
	assert.Equal(t, "updates/42_cover.png", ImagePath(now, "../../cover.png"))
}

func TestMemoryStorePublic(t *testing.T) {
	store := NewMemoryStore("https://cdn.example", true)
	obj, err := store.Upload(context.Background(), "updates", "a/b.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, int64(3), obj.Size)

	url, err := ResolveURL(context.Background(), store, obj, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/updates/a/b.png", url)

	body, contentType, err := store.Open("updates", "a/b.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", contentType)
}

func TestMemoryStorePrivateSigns(t *testing.T) {
	store := NewMemoryStore("https://cdn.example", false)
	assert.False(t, store.Public())
	obj, err := store.Upload(context.Background(), "tickets", "x.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)

	assert.Empty(t, store.PublicURL(obj.Bucket, obj.Path))
	url, err := ResolveURL(context.Background(), store, obj, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example/tickets/x.txt?expires="))

	_, err = store.SignedURL(context.Background(), "tickets", "missing", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = store.Open("tickets", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
