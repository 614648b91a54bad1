package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound reports a missing object.
var ErrNotFound = errors.New("blob not found")

// Object describes a stored blob.
type Object struct {
	Bucket      string
	Path        string
	ContentType string
	Size        int64
}

// Store is the object storage used for ticket attachments and post imagery.
type Store interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (Object, error)
	// PublicURL returns the unauthenticated URL of an object, or "" when the bucket is private.
	PublicURL(bucket, path string) string
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}

// ResolveURL prefers the public URL and falls back to a signed URL valid for ttl.
func ResolveURL(ctx context.Context, store Store, obj Object, ttl time.Duration) (string, error) {
	if url := store.PublicURL(obj.Bucket, obj.Path); url != "" {
		return url, nil
	}
	return store.SignedURL(ctx, obj.Bucket, obj.Path, ttl)
}
