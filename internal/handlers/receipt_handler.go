package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/services"
)

// ReceiptHandler handles receipt uploads.
type ReceiptHandler struct {
	receiptService services.ReceiptUploader
	maxBytes       int64
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService services.ReceiptUploader, maxBytes int64) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, maxBytes: maxBytes}
}

// ReceiptResponse carries the public URL of an uploaded receipt.
type ReceiptResponse struct {
	URL string `json:"url"`
}

// UploadReceipt stores a receipt image
// @Summary     Upload a receipt
// @Description Store an image or PDF and return its public URL, to be sent as receipt_image_url when creating a transaction. Admin only.
// @Tags        receipts
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Receipt image"
// @Success     201 {object} ReceiptResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     413 {object} ErrorResponse "File too large"
// @Failure     502 {object} ErrorResponse "Blob storage failure"
// @Router      /receipts [post]
func (h *ReceiptHandler) UploadReceipt(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Leave headroom for the multipart envelope.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(c, apperrors.ErrPayloadTooLarge)
			return
		}
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
		return
	}
	if fh.Size > h.maxBytes {
		respondWithError(c, apperrors.ErrPayloadTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	url, err := h.receiptService.UploadReceipt(c.Request.Context(), actor, data, fh.Filename)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ReceiptResponse{URL: url})
}
