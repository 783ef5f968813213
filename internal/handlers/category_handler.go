package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fundledger/internal/ledger"
)

// ListCategories returns the expense category codes with their labels
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Success     200 {array} CategoryResponse
// @Router      /categories [get]
func ListCategories(c *gin.Context) {
	out := make([]CategoryResponse, len(ledger.Categories))
	for i, cat := range ledger.Categories {
		out[i] = CategoryResponse{Code: cat, Label: cat.Label()}
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}
