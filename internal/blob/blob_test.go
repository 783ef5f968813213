package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1714651200123)
	tests := []struct {
		hint string
		want string
	}{
		{"receipt.jpg", "1714651200123_receipt.jpg"},
		{"factura farmacia (1).png", "1714651200123_factura_farmacia_1_.png"},
		{"../../etc/passwd", "1714651200123_passwd"},
		{`C:\Users\ana\foto.jpeg`, "1714651200123_foto.jpeg"},
		{"", "1714651200123_receipt"},
		{"...", "1714651200123_receipt"},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			if got := ObjectName(now, tt.hint); got != tt.want {
				t.Errorf("ObjectName(%q) = %q, want %q", tt.hint, got, tt.want)
			}
		})
	}
}

func TestDiskStore_Upload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8080/", "receipts")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	store.now = func() time.Time { return time.UnixMilli(42) }

	url, err := store.Upload(context.Background(), []byte("image-bytes"), "ticket.png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "http://localhost:8080/receipts/42_ticket.png" {
		t.Errorf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "42_ticket.png"))
	if err != nil {
		t.Fatalf("reading uploaded file: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestDiskStore_Upload_NameCollision(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080", "/receipts/")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	store.now = func() time.Time { return time.UnixMilli(7) }

	if _, err := store.Upload(context.Background(), []byte("a"), "x.png"); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	_, err = store.Upload(context.Background(), []byte("b"), "x.png")
	if err == nil || !strings.Contains(err.Error(), "create receipt file") {
		t.Errorf("second upload error = %v, want create failure", err)
	}
}

func TestDiskStore_Upload_CancelledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080", "receipts")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Upload(ctx, []byte("a"), "x.png"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestGCSStore_PublicURL(t *testing.T) {
	s := NewGCSStore(nil, "fund-receipts", "receipts")
	got := s.PublicURL(s.objectPath("1_a.png"))
	want := "https://storage.googleapis.com/fund-receipts/receipts/1_a.png"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}
