package router

import (
	"pizza_pos_backend/internal/handlers"
	"pizza_pos_backend/internal/middleware"
	"pizza_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterUser)
		authRoutes.POST("/login", authHandler.LoginUser)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.POST("/logout", authHandler.LogoutUser)
			authRequiredRoutes.GET("/me", authHandler.GetCurrentUser)
		}
	}
}

// SetupSaleRoutes sets up the checkout and transaction routes.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	saleRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier))
	{
		saleRoutes.POST("", saleHandler.CommitSale)
		saleRoutes.GET("", saleHandler.GetTransactions)
		saleRoutes.POST("/availability", saleHandler.CheckAvailability)
		saleRoutes.GET("/checkouts/:number", saleHandler.GetCheckout)
		saleRoutes.PUT("/checkouts/:number", saleHandler.UpdateCheckout)
		saleRoutes.GET("/rows/:id", saleHandler.GetTransactionRow)
		saleRoutes.DELETE("/rows/:id", saleHandler.DeleteTransactionRow)
	}
}

// SetupStockRoutes sets up the pizza and box stock lot routes.
func SetupStockRoutes(authenticatedGroup *gin.RouterGroup, stockHandler *handlers.StockHandler) {
	stockRoutes := authenticatedGroup.Group("/stock")
	stockRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier))
	{
		stockRoutes.POST("/pizza-lots", stockHandler.AddPizzaLots)
		stockRoutes.GET("/pizza-lots", stockHandler.GetPizzaLots)
		stockRoutes.GET("/pizza-lots/:id", stockHandler.GetPizzaLotByID)
		stockRoutes.PUT("/pizza-lots/:id", stockHandler.UpdatePizzaLot)
		stockRoutes.DELETE("/pizza-lots/:id", stockHandler.DeletePizzaLot)

		stockRoutes.POST("/box-lots", stockHandler.AddBoxLots)
		stockRoutes.GET("/box-lots", stockHandler.GetBoxLots)
		stockRoutes.GET("/box-lots/:id", stockHandler.GetBoxLotByID)
		stockRoutes.PUT("/box-lots/:id", stockHandler.UpdateBoxLot)
		stockRoutes.DELETE("/box-lots/:id", stockHandler.DeleteBoxLot)
	}
}

// SetupExpenseRoutes sets up the expense routes.
func SetupExpenseRoutes(authenticatedGroup *gin.RouterGroup, expenseHandler *handlers.ExpenseHandler) {
	expenseRoutes := authenticatedGroup.Group("/expenses")
	expenseRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier))
	{
		expenseRoutes.POST("", expenseHandler.CreateExpense)
		expenseRoutes.GET("", expenseHandler.GetExpenses)
		expenseRoutes.GET("/:id", expenseHandler.GetExpenseByID)
		expenseRoutes.PUT("/:id", expenseHandler.UpdateExpense)
		expenseRoutes.DELETE("/:id", expenseHandler.DeleteExpense)
	}
}

// SetupReportRoutes sets up the report and dashboard routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier))
	{
		reportRoutes.GET("/sales", reportHandler.GetSalesReport)
		reportRoutes.GET("/expenses", reportHandler.GetExpenseReport)
		reportRoutes.GET("/stock", reportHandler.GetStockReport)
	}

	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin, services.RoleCashier))
	{
		dashboardRoutes.GET("/summary", reportHandler.GetDashboardSummary)
	}
}
