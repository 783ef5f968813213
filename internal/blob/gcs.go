package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSStore uploads receipts to a Google Cloud Storage bucket. The bucket is
// expected to allow public reads.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewGCSStore creates a store writing objects under prefix in bucket. The
// client is owned by the caller.
func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		timeout: 2 * time.Minute,
		now:     time.Now,
	}
}

// Upload writes data to a new object and returns its public URL.
func (s *GCSStore) Upload(ctx context.Context, data []byte, nameHint string) (string, error) {
	object := s.objectPath(ObjectName(s.now(), nameHint))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = http.DetectContentType(data)
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy receipt to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize receipt upload: %w", err)
	}

	return s.PublicURL(object), nil
}

// PublicURL returns the public URL of an object in the store's bucket.
func (s *GCSStore) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", gcsPublicHost, s.bucket, object)
}

func (s *GCSStore) objectPath(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}
