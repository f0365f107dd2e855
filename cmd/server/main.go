package main

import (
	"log"
	"strings"

	"github.com/bkoyuncu/campus-tickets/internal/broker"
	"github.com/bkoyuncu/campus-tickets/internal/config"
	"github.com/bkoyuncu/campus-tickets/internal/database"
	"github.com/bkoyuncu/campus-tickets/internal/handler"
	"github.com/bkoyuncu/campus-tickets/internal/journal"
	"github.com/bkoyuncu/campus-tickets/internal/mailer"
	"github.com/bkoyuncu/campus-tickets/internal/middleware"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Log.Info("Config loaded successfully",
		zap.String("environment", cfg.Environment),
	)

	db := database.Connect(cfg.DatabaseURL)
	database.Migrate(db)

	// Reservation journal backs the admin reconcile endpoint.
	resJournal, err := journal.New(cfg.JournalPath)
	if err != nil {
		logger.Log.Fatal("Failed to initialize reservation journal", zap.Error(err))
	}
	defer resJournal.Close()

	eventBroker, err := broker.NewRedisEventBroker(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Redis broker", zap.Error(err))
	}
	defer eventBroker.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Invalid Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewEventRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	roleRequestRepo := repository.NewRoleRequestRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.SessionTTL)
	eventService := service.NewEventService(eventRepo)
	reservationService := service.NewReservationService(reservationRepo, eventRepo, eventBroker, resJournal)
	reviewService := service.NewReviewService(reviewRepo, eventRepo, userRepo)
	roleRequestService := service.NewRoleRequestService(roleRequestRepo, userRepo, eventBroker)
	adminService := service.NewAdminService(userRepo, eventRepo, reservationRepo, roleRequestRepo, sessionRepo)

	// Email notifications are optional: without SMTP_HOST the broker
	// events are still published, just not delivered.
	if cfg.SMTPHost != "" {
		smtp, err := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			logger.Log.Fatal("Failed to initialize SMTP mailer", zap.Error(err))
		}
		notifier := service.NewNotifier(eventBroker, smtp)
		if err := notifier.Start(); err != nil {
			logger.Log.Fatal("Failed to start notifier", zap.Error(err))
		}
		logger.Log.Info("Email notifier started", zap.String("smtp_host", cfg.SMTPHost))
	} else {
		logger.Log.Warn("SMTP_HOST not set, email notifications disabled")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	eventHandler := handler.NewEventHandler(eventService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	roleRequestHandler := handler.NewRoleRequestHandler(roleRequestService)
	adminHandler := handler.NewAdminHandler(adminService, reservationService)
	wsHandler := handler.NewAvailabilityWSHandler(eventBroker)
	go wsHandler.Run()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))

	authLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/events", eventHandler.ListEvents)
	api.GET("/events/:id", eventHandler.GetEvent)
	api.GET("/events/:id/availability", reservationHandler.AvailableSeats)
	api.GET("/comments/event/:eventId", reviewHandler.ListEventReviews)

	// Authenticated routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/ws/events/:id/availability", wsHandler.HandleAvailability)

		protected.POST("/reservations/events/:eventId", reservationHandler.CreateReservation)
		protected.GET("/reservations", reservationHandler.ListOwnReservations)
		protected.GET("/reservations/:id", reservationHandler.GetReservation)
		protected.GET("/reservations/:id/qrcode", reservationHandler.GetReservationQR)
		protected.DELETE("/reservations/:id", reservationHandler.DeleteReservation)

		protected.POST("/comments/event/:eventId", reviewHandler.CreateReview)
		protected.PUT("/comments/:id", reviewHandler.UpdateReview)
		protected.DELETE("/comments/:id", reviewHandler.DeleteReview)

		protected.POST("/role-requests", roleRequestHandler.CreateRequest)
		protected.GET("/role-requests/mine", roleRequestHandler.ListOwnRequests)

		selfOrAdmin := protected.Group("/users")
		selfOrAdmin.Use(middleware.RequireSelfOrAdmin(userRepo))
		{
			selfOrAdmin.GET("/:id", userHandler.GetUser)
			selfOrAdmin.PUT("/:id", userHandler.UpdateUser)
		}

		organizer := protected.Group("/events/organizer")
		organizer.Use(middleware.RequireOrganizer(userRepo))
		{
			organizer.GET("", eventHandler.ListOwnEvents)
			organizer.POST("/create", eventHandler.CreateEvent)
			organizer.PUT("/:id", eventHandler.UpdateEvent)
			organizer.DELETE("/:id", eventHandler.DeleteEvent)
			organizer.GET("/:id/reservations", reservationHandler.ListEventReservations)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin(userRepo))
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/users", adminHandler.GetAllUsers)
			admin.GET("/users/deleted", adminHandler.GetDeletedUsers)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.POST("/users/:id/restore", adminHandler.RestoreUser)
			admin.DELETE("/events/:id", eventHandler.AdminDeleteEvent)
			admin.GET("/events/:id/reconcile", adminHandler.ReconcileEvent)
			admin.GET("/role-requests", roleRequestHandler.ListPending)
			admin.PUT("/role-requests/:id/approve", roleRequestHandler.Approve)
			admin.PUT("/role-requests/:id/reject", roleRequestHandler.Reject)
		}
	}

	port := cfg.ServerPort
	if port == "" {
		port = ":8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	logger.Log.Info("Server starting", zap.String("port", port))
	if err := router.Run(port); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}
