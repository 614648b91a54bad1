package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps blobs in Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
	public bool
}

// NewGCSStore opens a storage client. credentialsFile may be empty to use ambient credentials.
// public marks the buckets as world-readable so PublicURL can be used instead of signing.
func NewGCSStore(ctx context.Context, credentialsFile string, public bool) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, public: public}, nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (Object, error) {
	w := s.client.Bucket(bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	size, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	return Object{Bucket: bucket, Path: path, ContentType: contentType, Size: size}, nil
}

func (s *GCSStore) PublicURL(bucket, path string) string {
	if !s.public {
		return ""
	}
	return (&url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + path}).String()
}

func (s *GCSStore) SignedURL(_ context.Context, bucket, path string, ttl time.Duration) (string, error) {
	signed, err := s.client.Bucket(bucket).SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign %s/%s: %w", bucket, path, err)
	}
	return signed, nil
}
