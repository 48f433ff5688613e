package handlers

import (
	"errors"
	"net/http"

	"pizza_pos_backend/internal/models"
	"pizza_pos_backend/internal/services"
	"pizza_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler holds the expense service.
type ExpenseHandler struct {
	expenseService services.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(es services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: es}
}

// CreateExpense handles logging a new expense.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req services.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateExpense: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(req)
	if err != nil {
		respondExpenseError(c, err, "CreateExpense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// GetExpenses handles fetching expenses with filters.
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	var filters models.ExpenseFilters
	if categoryStr := c.Query("category"); categoryStr != "" {
		category := models.ExpenseCategory(categoryStr)
		filters.Category = &category
	}
	filters.DateFrom = utils.NewNullString(c.Query("date_from"))
	filters.DateTo = utils.NewNullString(c.Query("date_to"))
	filters.Page, filters.PageSize = parsePagination(c)

	expenses, totalCount, err := h.expenseService.GetExpenses(filters)
	if err != nil {
		utils.LogError(err, "GetExpenses: Error from expenseService.GetExpenses")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch expenses.", "Internal error"))
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      expenses,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetExpenseByID handles fetching a single expense.
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	expense, err := h.expenseService.GetExpenseByID(id)
	if err != nil {
		respondExpenseError(c, err, "GetExpenseByID")
		return
	}
	c.JSON(http.StatusOK, expense)
}

// UpdateExpense handles editing an expense.
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateExpense: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(id, req)
	if err != nil {
		respondExpenseError(c, err, "UpdateExpense")
		return
	}
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense handles removing an expense.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.expenseService.DeleteExpense(id); err != nil {
		respondExpenseError(c, err, "DeleteExpense")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

func respondExpenseError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from expense service")
	switch {
	case errors.Is(err, services.ErrExpenseNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Expense not found.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Input validation failed.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to process expense operation.", "Internal error"))
	}
}
