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

// StockHandler holds the stock service.
type StockHandler struct {
	stockService services.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(ss services.StockService) *StockHandler {
	return &StockHandler{stockService: ss}
}

// AddPizzaLots handles adding one or more purchased pizza batches.
func (h *StockHandler) AddPizzaLots(c *gin.Context) {
	var req struct {
		Lots []services.CreatePizzaLotRequest `json:"lots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddPizzaLots: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	lots, err := h.stockService.AddPizzaLots(req.Lots)
	if err != nil {
		respondStockError(c, err, "AddPizzaLots")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": lots})
}

// GetPizzaLots handles fetching pizza stock lots with filters.
func (h *StockHandler) GetPizzaLots(c *gin.Context) {
	filters := parseStockFilters(c)
	lots, totalCount, err := h.stockService.GetPizzaLots(filters)
	if err != nil {
		utils.LogError(err, "GetPizzaLots: Error from stockService.GetPizzaLots")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch pizza lots.", "Internal error"))
		return
	}
	if lots == nil {
		lots = []models.PizzaStockLot{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      lots,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetPizzaLotByID handles fetching a single pizza lot.
func (h *StockHandler) GetPizzaLotByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	lot, err := h.stockService.GetPizzaLotByID(id)
	if err != nil {
		respondStockError(c, err, "GetPizzaLotByID")
		return
	}
	c.JSON(http.StatusOK, lot)
}

// UpdatePizzaLot handles cost-price and manual quantity edits of a lot.
func (h *StockHandler) UpdatePizzaLot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePizzaLot: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	lot, err := h.stockService.UpdatePizzaLot(id, req)
	if err != nil {
		respondStockError(c, err, "UpdatePizzaLot")
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DeletePizzaLot handles explicit removal of a lot.
func (h *StockHandler) DeletePizzaLot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.stockService.DeletePizzaLot(id); err != nil {
		respondStockError(c, err, "DeletePizzaLot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pizza lot deleted"})
}

// AddBoxLots handles adding one or more purchased box batches.
func (h *StockHandler) AddBoxLots(c *gin.Context) {
	var req struct {
		Lots []services.CreateBoxLotRequest `json:"lots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddBoxLots: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	lots, err := h.stockService.AddBoxLots(req.Lots)
	if err != nil {
		respondStockError(c, err, "AddBoxLots")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": lots})
}

// GetBoxLots handles fetching box stock lots with filters.
func (h *StockHandler) GetBoxLots(c *gin.Context) {
	filters := parseStockFilters(c)
	lots, totalCount, err := h.stockService.GetBoxLots(filters)
	if err != nil {
		utils.LogError(err, "GetBoxLots: Error from stockService.GetBoxLots")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch box lots.", "Internal error"))
		return
	}
	if lots == nil {
		lots = []models.BoxStockLot{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      lots,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetBoxLotByID handles fetching a single box lot.
func (h *StockHandler) GetBoxLotByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	lot, err := h.stockService.GetBoxLotByID(id)
	if err != nil {
		respondStockError(c, err, "GetBoxLotByID")
		return
	}
	c.JSON(http.StatusOK, lot)
}

// UpdateBoxLot handles edits of a box lot.
func (h *StockHandler) UpdateBoxLot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateBoxLot: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	lot, err := h.stockService.UpdateBoxLot(id, req)
	if err != nil {
		respondStockError(c, err, "UpdateBoxLot")
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DeleteBoxLot handles explicit removal of a box lot.
func (h *StockHandler) DeleteBoxLot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.stockService.DeleteBoxLot(id); err != nil {
		respondStockError(c, err, "DeleteBoxLot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Box lot deleted"})
}

func respondStockError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from stock service")
	switch {
	case errors.Is(err, services.ErrLotNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock lot not found.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Input validation failed.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to process stock operation.", "Internal error"))
	}
}

func parseStockFilters(c *gin.Context) models.StockFilters {
	var filters models.StockFilters
	filters.Flavor = utils.NewNullString(c.Query("flavor"))
	if sizeStr := c.Query("size"); sizeStr != "" {
		size := models.PizzaSize(sizeStr)
		filters.Size = &size
	}
	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		inStock := inStockStr == "true"
		filters.InStock = &inStock
	}
	filters.Page, filters.PageSize = parsePagination(c)
	return filters
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid id format.", err.Error()))
		return 0, false
	}
	return id, true
}
