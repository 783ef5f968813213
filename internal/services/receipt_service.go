package services

import (
	"context"
	"net/http"
	"strings"

	"fundledger/internal/blob"
	apperrors "fundledger/internal/errors"
)

// receiptService stores receipt images through a blob.Store.
type receiptService struct {
	store    blob.Store
	maxBytes int64
	audit    AuditServicer
}

// NewReceiptService creates a new ReceiptUploader accepting files of at most
// maxBytes.
func NewReceiptService(store blob.Store, maxBytes int64, audit AuditServicer) ReceiptUploader {
	return &receiptService{store: store, maxBytes: maxBytes, audit: audit}
}

// UploadReceipt stores an image or PDF and returns its public URL.
func (s *receiptService) UploadReceipt(ctx context.Context, actor Actor, data []byte, filename string) (string, error) {
	if !actor.IsAdmin() {
		return "", apperrors.ErrForbidden
	}
	if len(data) == 0 {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperrors.ErrPayloadTooLarge
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "receipt must be an image or PDF")
	}

	url, err := s.store.Upload(ctx, data, filename)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}

	s.audit.Log(actor.UserID, "UPLOAD_RECEIPT", "receipt", url, actor.IPAddress, map[string]interface{}{
		"filename":     filename,
		"content_type": contentType,
		"size":         len(data),
	})
	return url, nil
}
