package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fundledger/internal/services"
)

// DashboardHandler serves the public dashboard figures.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns income, expense, balance and the dollar equivalent
// @Summary     Fund summary
// @Description Totals for the (optionally filtered) ledger. The dollar conversion is marked unavailable when the balance is not positive or no rate can be obtained.
// @Tags        dashboard
// @Produce     json
// @Param       q         query string false "Case-insensitive description search"
// @Param       type      query string false "income, expense or all"
// @Param       category  query string false "Expense category code or all"
// @Param       person_id query string false "Person ID or all"
// @Success     200 {object} SummaryResponse
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     500 {object} ErrorResponse "Invalid stored record"
// @Failure     502 {object} ErrorResponse "Ledger store failure"
// @Router      /summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSummaryResponse(summary))
}

// GetCategoryBreakdown returns expense totals per category
// @Summary     Expense breakdown
// @Description Every expense category in display order with its total and share of total expense
// @Tags        dashboard
// @Produce     json
// @Param       q         query string false "Case-insensitive description search"
// @Param       type      query string false "income, expense or all"
// @Param       category  query string false "Expense category code or all"
// @Param       person_id query string false "Person ID or all"
// @Success     200 {array} CategoryShareResponse
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     502 {object} ErrorResponse "Ledger store failure"
// @Router      /categories/breakdown [get]
func (h *DashboardHandler) GetCategoryBreakdown(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shares, err := h.dashboardService.CategoryBreakdown(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]CategoryShareResponse, len(shares))
	for i, s := range shares {
		out[i] = CategoryShareResponse{
			Category: s.Category,
			Label:    s.Category.Label(),
			Total:    s.Total,
			Percent:  s.Percent,
		}
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// GetExchangeRate returns the official bolívar/dollar rate
// @Summary     Exchange rate
// @Tags        dashboard
// @Produce     json
// @Success     200 {object} ExchangeRateResponse
// @Failure     503 {object} ErrorResponse "Rate unavailable"
// @Router      /exchange-rate [get]
func (h *DashboardHandler) GetExchangeRate(c *gin.Context) {
	rate, err := h.dashboardService.ExchangeRate(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExchangeRateResponse{Rate: rate.Value, FetchedAt: rate.FetchedAt})
}

// RefreshExchangeRate forces a rate fetch
// @Summary     Refresh exchange rate
// @Description Fetch the rate from the source now. Requires the service API key.
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} ExchangeRateResponse
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Rate unavailable"
// @Router      /internal/exchange-rate/refresh [post]
func (h *DashboardHandler) RefreshExchangeRate(c *gin.Context) {
	rate, err := h.dashboardService.RefreshExchangeRate(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExchangeRateResponse{Rate: rate.Value, FetchedAt: rate.FetchedAt})
}
