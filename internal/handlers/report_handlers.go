package handlers

import (
	"net/http"

	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/services"
	"pizza_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// parseReportRequestParams helps parse common query parameters for reports.
func parseReportRequestParams(c *gin.Context) models.ReportRequestParams {
	var params models.ReportRequestParams
	params.StartDate = c.Query("start_date")
	params.EndDate = c.Query("end_date")
	params.Period = c.Query("period") // daily, weekly, monthly, custom

	params.Flavor = utils.NewNullString(c.Query("flavor"))
	if sizeStr := c.Query("size"); sizeStr != "" {
		size := models.PizzaSize(sizeStr)
		params.Size = &size
	}
	return params
}

// GetDashboardSummary provides a summary of key metrics for the dashboard.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.GetDashboardSummary()
	if err != nil {
		utils.LogError(err, "GetDashboardSummary: Error from reportService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build dashboard summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetSalesReport returns per-day sales totals for the requested range.
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	params := parseReportRequestParams(c)
	items, err := h.reportService.GetSalesReport(params)
	if err != nil {
		utils.LogError(err, "GetSalesReport: Error from reportService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build sales report.", "Internal error"))
		return
	}
	if items == nil {
		items = []models.SalesReportItem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetExpenseReport returns per-category expense totals for the requested range.
func (h *ReportHandler) GetExpenseReport(c *gin.Context) {
	params := parseReportRequestParams(c)
	items, err := h.reportService.GetExpenseReport(params)
	if err != nil {
		utils.LogError(err, "GetExpenseReport: Error from reportService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build expense report.", "Internal error"))
		return
	}
	if items == nil {
		items = []models.ExpenseReportItem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetStockReport lists all lots of both pools with a stock status flag.
func (h *ReportHandler) GetStockReport(c *gin.Context) {
	items, err := h.reportService.GetStockReport()
	if err != nil {
		utils.LogError(err, "GetStockReport: Error from reportService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build stock report.", "Internal error"))
		return
	}
	if items == nil {
		items = []models.StockReportItem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
