package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"pizza_pos_backend/internal/cache"
	"pizza_pos_backend/internal/database"
	"pizza_pos_backend/internal/router"
	"pizza_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize Logger
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on environment variables")
	}

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "pizza_pos_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "pizza_pos_password")
	dbName := utils.Getenv("DB_NAME", "pizza_pos_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	// Initialize Database
	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	// View cache: Redis when configured, otherwise reports go straight to the
	// database on every request.
	views := buildViewCache()

	engine := gin.Default()

	// Add GinLogger middleware for request logging
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"} // Default origins
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	numberPrefix := utils.Getenv("TX_NUMBER_PREFIX", "PZ")
	router.Setup(engine, database.GetDB(), views, numberPrefix)

	// Server port configuration
	port := utils.Getenv("PORT", "8080") // Default to 8080 if not set
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func buildViewCache() cache.ViewCache {
	redisAddr := utils.Getenv("REDIS_ADDR", "")
	if redisAddr == "" {
		utils.LogInfo("REDIS_ADDR not set, view caching disabled")
		return cache.NoopViewCache{}
	}

	redisDB, err := strconv.Atoi(utils.Getenv("REDIS_DB", "0"))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid REDIS_DB value")
	}
	redisCache := cache.NewRedisViewCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	utils.LogInfo("View cache connected", map[string]interface{}{"addr": redisAddr})
	return redisCache
}
