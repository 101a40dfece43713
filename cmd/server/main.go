package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/magnate-systems/picking-api/internal/config"
	"github.com/magnate-systems/picking-api/internal/database"
	"github.com/magnate-systems/picking-api/internal/handlers"
	"github.com/magnate-systems/picking-api/internal/logging"
	"github.com/magnate-systems/picking-api/internal/middleware"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/services"
	"github.com/magnate-systems/picking-api/internal/storage"
	"github.com/magnate-systems/picking-api/internal/woocommerce"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Upstream order source
	orders := woocommerce.NewClient(cfg)

	// Photo storage: GCS when a bucket is configured, local disk otherwise
	var photoStore storage.PhotoStore
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStore(context.Background(), cfg.GCSBucket, cfg.GCSCredentialsJSON)
		if err != nil {
			log.Fatalf("Failed to initialize GCS storage: %v", err)
		}
		defer gcs.Close()
		photoStore = gcs
	} else {
		logging.GetLogger().WithField("dir", cfg.LocalPhotoDir).Info("No GCS bucket configured, storing photos on local disk")
		photoStore = storage.NewLocalStore(cfg.LocalPhotoDir, cfg.LocalPhotoBaseURL)
	}

	// Repositories
	db := database.GetDB()
	sessionRepo := repository.NewSessionRepository(db)
	exceptionRepo := repository.NewExceptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	configRepo := repository.NewConfigRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	sessionService := services.NewSessionService(sessionRepo, orders, photoStore)
	exceptionService := services.NewExceptionService(exceptionRepo, sessionRepo, orders)
	orderService := services.NewOrderService(orders, sessionRepo)
	metricsService := services.NewMetricsService(metricsRepo)
	userService := services.NewUserService(userRepo, warehouseRepo)
	warehouseService := services.NewWarehouseService(warehouseRepo, userRepo)
	configService := services.NewConfigService(configRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	exceptionHandler := handlers.NewExceptionHandler(exceptionService)
	metricsHandler := handlers.NewMetricsHandler(metricsService)
	adminHandler := handlers.NewAdminHandler(userService, authService, configService, orderService, sessionService)
	warehouseHandler := handlers.NewWarehouseHandler(warehouseService)
	healthHandler := handlers.NewHealthHandler()

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoints
	r.GET("/health", healthHandler.Health)
	r.GET("/health/detailed", healthHandler.HealthDetailed)

	requireAuth := middleware.RequireAuth(cfg, userRepo)
	supervise := middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// Order routes (protected)
		orderRoutes := api.Group("/orders")
		orderRoutes.Use(requireAuth)
		{
			orderRoutes.GET("", orderHandler.List)
			orderRoutes.GET("/:id", orderHandler.Get)
			orderRoutes.GET("/:id/qr-label", orderHandler.Label)
			orderRoutes.POST("/:id/start", sessionHandler.Start)
		}

		// Session routes (protected)
		sessionRoutes := api.Group("/sessions")
		sessionRoutes.Use(requireAuth)
		{
			sessionRoutes.POST("/:id/scan", sessionHandler.Scan)
			sessionRoutes.POST("/:id/photo", sessionHandler.UploadPhoto)
			sessionRoutes.POST("/:id/finish", sessionHandler.Finish)
			sessionRoutes.GET("/:id/lines", sessionHandler.Lines)
			sessionRoutes.POST("/:id/exception", exceptionHandler.Create)
		}

		// Exception adjudication (supervisors)
		exceptionRoutes := api.Group("/exceptions")
		exceptionRoutes.Use(requireAuth, supervise)
		{
			exceptionRoutes.GET("", exceptionHandler.ListPending)
			exceptionRoutes.POST("/:id/approve", exceptionHandler.Approve)
			exceptionRoutes.POST("/:id/reject", exceptionHandler.Reject)
		}

		// Metrics (supervisors)
		api.GET("/metrics", requireAuth, supervise, metricsHandler.Dashboard)

		// Warehouses
		warehouseRoutes := api.Group("/warehouses")
		warehouseRoutes.Use(requireAuth)
		{
			warehouseRoutes.GET("", supervise, warehouseHandler.List)
			warehouseRoutes.POST("", adminOnly, warehouseHandler.Create)
			warehouseRoutes.POST("/:id/assign", adminOnly, warehouseHandler.AssignUser)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(requireAuth, adminOnly)
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/config", adminHandler.GetConfig)
			admin.PUT("/config", adminHandler.SetConfig)
			admin.GET("/audit/orders", adminHandler.AuditOrders)
			admin.GET("/audit/sessions", adminHandler.AuditSessions)
			admin.GET("/audit/sessions/:id/events", adminHandler.AuditEvents)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
