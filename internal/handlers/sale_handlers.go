package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/services"
	"pizza_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

// CommitSale handles a checkout submission with one or more line items.
func (h *SaleHandler) CommitSale(c *gin.Context) {
	var req services.CommitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CommitSale: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.saleService.CommitSale(req)
	if err != nil {
		respondSaleError(c, err, "CommitSale")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetTransactions handles fetching transactions with filters.
func (h *SaleHandler) GetTransactions(c *gin.Context) {
	var filters models.TransactionFilters
	filters.Number = utils.NewNullString(c.Query("number"))
	filters.Flavor = utils.NewNullString(c.Query("flavor"))
	filters.DateFrom = utils.NewNullString(c.Query("date_from"))
	filters.DateTo = utils.NewNullString(c.Query("date_to"))
	filters.Page, filters.PageSize = parsePagination(c)

	transactions, totalCount, err := h.saleService.GetTransactions(filters)
	if err != nil {
		utils.LogError(err, "GetTransactions: Error from saleService.GetTransactions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transactions.", "Internal error"))
		return
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      transactions,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetCheckout returns the ordered rows of one checkout, the shape the
// receipt generator consumes.
func (h *SaleHandler) GetCheckout(c *gin.Context) {
	number := c.Param("number")
	rows, err := h.saleService.GetCheckout(number)
	if err != nil {
		if errors.Is(err, services.ErrCheckoutNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Checkout not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetCheckout: Error from saleService.GetCheckout")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch checkout.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction_number": number, "rows": rows})
}

// UpdateCheckout handles post-hoc edits of a committed checkout.
func (h *SaleHandler) UpdateCheckout(c *gin.Context) {
	number := c.Param("number")
	var req services.UpdateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateCheckout: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.saleService.UpdateCheckout(number, req)
	if err != nil {
		if errors.Is(err, services.ErrCheckoutNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Checkout not found.", err.Error()))
			return
		}
		respondSaleError(c, err, "UpdateCheckout")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransactionRow returns a single persisted row by id.
func (h *SaleHandler) GetTransactionRow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid transaction id format.", err.Error()))
		return
	}

	row, err := h.saleService.GetTransactionRow(id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction row not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetTransactionRow: Error from saleService.GetTransactionRow")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transaction row.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteTransactionRow deletes a single row of a checkout. Stock deducted by
// the row is not restored.
func (h *SaleHandler) DeleteTransactionRow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid transaction id format.", err.Error()))
		return
	}

	if err := h.saleService.DeleteTransactionRow(id); err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction row not found.", err.Error()))
			return
		}
		utils.LogError(err, "DeleteTransactionRow: Error from saleService.DeleteTransactionRow")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete transaction row.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction row deleted"})
}

// CheckAvailability runs the full-report availability check over proposed
// lines without committing anything.
func (h *SaleHandler) CheckAvailability(c *gin.Context) {
	var req struct {
		Lines []services.SaleLineRequest `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CheckAvailability: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.saleService.CheckAvailabilityReport(req.Lines)
	if err != nil {
		respondSaleError(c, err, "CheckAvailability")
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondSaleError maps sale-service errors onto API responses.
func respondSaleError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from sale service")
	var shortage *services.ShortageError
	switch {
	case errors.As(err, &shortage):
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{
				"code":      utils.ErrCodeConflict,
				"message":   shortage.Error(),
				"shortages": shortage.Result.Shortages,
			},
		})
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Input validation failed.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to process sale.", "Internal error"))
	}
}

// parsePagination reads the page/page_size query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page := 1
	pageSize := 10
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps > 0 {
			pageSize = ps
		}
	}
	return page, pageSize
}
