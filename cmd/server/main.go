package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bloggingapp/engagement-backend/internal/router"
	"github.com/bloggingapp/engagement-backend/pkg/config"
	"github.com/bloggingapp/engagement-backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		logger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	redisClient := config.InitRedis(cfg.RedisAddr)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	dispatcher := router.SetupRoutes(e, db.Postgres, db.Mongo, redisClient, cfg, logger)
	defer dispatcher.Stop()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
