package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/handlers"
	"github.com/bloggingapp/engagement-backend/internal/middleware"
	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/notify"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
	"github.com/bloggingapp/engagement-backend/internal/services"
	"github.com/bloggingapp/engagement-backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes wires repositories, services and handlers and registers all
// routes. It returns the started notification dispatcher so the caller
// can drain it at shutdown.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) *notify.Dispatcher {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
		&models.NotificationSettings{},
		&models.Follow{},
	)
	if err != nil {
		logger.Fatal("failed to auto migrate models", zap.Error(err))
	}
	logger.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("bloggingapp"))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	reactionRepo := repositories.NewPostgresReactionRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	settingsRepo := repositories.NewPostgresNotificationSettingsRepository(pgdb)

	// --- Outbound notification pipeline ---
	channel := notify.NewTwilioWhatsAppChannel(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioWhatsAppFrom,
		cfg.WhatsAppEnabled,
		logger,
	)
	limiter := notify.NewRateWindowTracker(cfg.RateLimitPerMinute, cfg.RateLimitPerHour)
	dispatcher := notify.NewDispatcher(channel, limiter, cfg.NotifyQueueSize, cfg.NotifyWorkerCount, logger)
	dispatcher.Start()

	// --- Services ---
	factory := services.NewNotificationFactory(notificationRepo, settingsRepo, userRepo, followRepo, postRepo, dispatcher, logger)
	reactionService := services.NewReactionService(reactionRepo, commentRepo, postRepo, factory, redisClient, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, factory, logger)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	postHandler := handlers.NewPostHandler(postRepo, factory)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentService)
	commentHandler.RegisterCommentRoutes(api)

	reactionHandler := handlers.NewReactionHandler(reactionService)
	reactionHandler.RegisterReactionRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, factory)
	followHandler.RegisterFollowRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	settingsHandler := handlers.NewSettingsHandler(settingsRepo)
	settingsHandler.RegisterSettingsRoutes(api)

	logger.Info("all routes configured")
	return dispatcher
}
