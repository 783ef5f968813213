package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	recentLimit        int
}

// NewTransactionHandler creates a new TransactionHandler. recentLimit is the
// default size of the recent activity list.
func NewTransactionHandler(transactionService services.TransactionServicer, recentLimit int) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, recentLimit: recentLimit}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Date            *string         `json:"date"`
	Type            string          `json:"type" binding:"required,transaction_type"`
	Description     string          `json:"description" binding:"required,max=500"`
	AmountBs        decimal.Decimal `json:"amount_bs"`
	Category        string          `json:"category" binding:"omitempty,expense_category"`
	PersonID        string          `json:"person_id" binding:"omitempty,uuid"`
	NewPersonName   string          `json:"new_person_name" binding:"max=200"`
	ReceiptImageURL string          `json:"receipt_image_url" binding:"omitempty,url,max=1000"`
}

// CreateTransaction records a new income or expense
// @Summary     Create a transaction
// @Description Record an income or expense. Admin only.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     502 {object} ErrorResponse "Ledger store failure"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		date = parsed
	}

	entry, err := h.transactionService.CreateTransaction(c.Request.Context(), actor, services.CreateTransactionInput{
		Date:          date,
		Type:          req.Type,
		Description:   req.Description,
		Amount:        req.AmountBs,
		Category:      req.Category,
		PersonID:      req.PersonID,
		NewPersonName: req.NewPersonName,
		ReceiptURL:    req.ReceiptImageURL,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": newTransactionResponse(*entry)})
}

// ListTransactions returns the filtered ledger, newest first
// @Summary     List transactions
// @Description Paginated transactions, newest first, filtered by text, type, category and person
// @Tags        transactions
// @Produce     json
// @Param       q         query string false "Case-insensitive description search"
// @Param       type      query string false "income, expense or all"
// @Param       category  query string false "Expense category code or all"
// @Param       person_id query string false "Person ID or all"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[TransactionResponse]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Invalid stored record"
// @Failure     502 {object} ErrorResponse "Ledger store failure"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionPage(result))
}

// RecentTransactions returns the latest activity
// @Summary     Recent transactions
// @Description The newest transactions, 15 by default
// @Tags        transactions
// @Produce     json
// @Param       limit query int false "Number of transactions (1-100)"
// @Success     200 {array} TransactionResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Ledger store failure"
// @Router      /transactions/recent [get]
func (h *TransactionHandler) RecentTransactions(c *gin.Context) {
	limit := h.recentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	entries, err := h.transactionService.RecentTransactions(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": newTransactionResponses(entries)})
}

// GetTransactionByID returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newTransactionResponse(*entry)})
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Description Admin only.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
