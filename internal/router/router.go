package router

import (
	"database/sql"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/handlers"
	"pizza_pos_backend/internal/middleware"
	"pizza_pos_backend/internal/repositories"
	"pizza_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, views cache.ViewCache, numberPrefix string) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	stockRepo := repositories.NewStockRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)

	// Initialize Services
	numbers := services.NewTransactionNumberGenerator(txRepo, numberPrefix)
	authService := services.NewAuthService(authRepo, db)
	saleService := services.NewSaleService(txRepo, stockRepo, numbers, views, db)
	stockService := services.NewStockService(stockRepo, views, db)
	expenseService := services.NewExpenseService(expenseRepo, views, db)
	reportService := services.NewReportService(txRepo, expenseRepo, stockRepo, views)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	saleHandler := handlers.NewSaleHandler(saleService)
	stockHandler := handlers.NewStockHandler(stockService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	reportHandler := handlers.NewReportHandler(reportService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupSaleRoutes(authenticated, saleHandler)
		SetupStockRoutes(authenticated, stockHandler)
		SetupExpenseRoutes(authenticated, expenseHandler)
		SetupReportRoutes(authenticated, reportHandler)
	}
}
