package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore keeps receipts in a local directory that the API serves under
// URLPath. Used in development and single-node deployments.
type DiskStore struct {
	dir     string
	baseURL string
	urlPath string
	now     func() time.Time
}

// NewDiskStore creates dir if needed. baseURL is the public origin of the
// API and urlPath the route the directory is mounted on.
func NewDiskStore(dir, baseURL, urlPath string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		urlPath: "/" + strings.Trim(urlPath, "/"),
		now:     time.Now,
	}, nil
}

// Dir returns the directory receipts are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Upload writes data to a new file and returns its URL.
func (s *DiskStore) Upload(ctx context.Context, data []byte, nameHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := ObjectName(s.now(), nameHint)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close receipt file: %w", err)
	}

	return s.baseURL + s.urlPath + "/" + name, nil
}
