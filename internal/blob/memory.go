package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps blobs in process memory and serves them under baseURL.
// It backs local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
	public  bool
}

// NewMemoryStore builds a store whose URLs are rooted at baseURL (for example "http://localhost:8080/blobs").
func NewMemoryStore(baseURL string, public bool) *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), baseURL: baseURL, public: public}
}

func memoryKey(bucket, path string) string {
	return bucket + "/" + path
}

func (s *MemoryStore) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Object{}, fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	s.mu.Lock()
	s.objects[memoryKey(bucket, path)] = memoryObject{data: data, contentType: contentType}
	s.mu.Unlock()
	return Object{Bucket: bucket, Path: path, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *MemoryStore) PublicURL(bucket, path string) string {
	if !s.public {
		return ""
	}
	return s.baseURL + "/" + bucket + "/" + path
}

func (s *MemoryStore) SignedURL(_ context.Context, bucket, path string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[memoryKey(bucket, path)]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	expires := strconv.FormatInt(time.Now().Add(ttl).Unix(), 10)
	return s.baseURL + "/" + bucket + "/" + path + "?" + url.Values{"expires": {expires}}.Encode(), nil
}

// Public reports whether objects are served without a signature.
func (s *MemoryStore) Public() bool {
	return s.public
}

// Open returns the stored bytes and content type.
func (s *MemoryStore) Open(bucket, path string) (io.Reader, string, error) {
	s.mu.RLock()
	obj, ok := s.objects[memoryKey(bucket, path)]
	s.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return bytes.NewReader(obj.data), obj.contentType, nil
}
