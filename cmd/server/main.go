package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/internal/app/controller"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/app/service"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/smartcart/smartcart-backend/internal/middleware"
	"github.com/smartcart/smartcart-backend/internal/router"
	"github.com/smartcart/smartcart-backend/internal/scheduler"
	"github.com/smartcart/smartcart-backend/internal/storage"
	"github.com/smartcart/smartcart-backend/pkg/geocode"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/redis"
	"github.com/smartcart/smartcart-backend/pkg/sms"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SmartCart Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed default categories
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis is optional: without it token revocation and the unread-count
	// cache are disabled, everything else still works.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	wishlistRepo := repository.NewWishlistRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())
	auditRepo := repository.NewAuditLogRepository(db.GetDB())
	expiryAlertRepo := repository.NewExpiryAlertRepository(db.GetDB())
	couponRepo := repository.NewCouponRepository(db.GetDB())
	interactionCheckRepo := repository.NewInteractionCheckRepository(db.GetDB())

	// External clients
	geocodeClient := geocode.NewClient(cfg.GoogleMaps.APIKey)
	smsClient := sms.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.BaseURL)
	s3Storage := storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)

	// Initialize services
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, notificationRepo, auditService, cfg.JWT)
	expiryService := service.NewExpiryService(expiryAlertRepo, productRepo)
	productService := service.NewProductService(
		productRepo, categoryRepo, reviewRepo, wishlistRepo, notificationRepo,
		expiryService, auditService, db.GetDB(),
	)
	categoryService := service.NewCategoryService(categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	couponService := service.NewCouponService(couponRepo, auditService)
	orderService := service.NewOrderService(
		orderRepo, cartRepo, productRepo, userRepo, notificationRepo,
		couponService, cartService, auditService,
		geocodeClient, smsClient, db.GetDB(),
	)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo, cartService)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	dashboardService := service.NewDashboardService(orderRepo, productRepo)
	aiService := service.NewAIService(cfg.Gemini, productRepo, interactionCheckRepo)
	invoiceService := service.NewInvoiceService()
	exportService := service.NewExportService(productRepo, orderRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, invoiceService)
	wishlistController := controller.NewWishlistController(wishlistService)
	reviewController := controller.NewReviewController(reviewService)
	notificationController := controller.NewNotificationController(notificationService)
	couponController := controller.NewCouponController(couponService)
	adminController := controller.NewAdminController(dashboardService, expiryService, auditService, exportService)
	aiController := controller.NewAIController(aiService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		categoryController,
		cartController,
		orderController,
		wishlistController,
		reviewController,
		notificationController,
		couponController,
		adminController,
		aiController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start the daily expiry sweep
	expiryScheduler := scheduler.NewExpiryScheduler(expiryService)
	if err := expiryScheduler.Start(); err != nil {
		logger.Fatal("Failed to start expiry scheduler", err)
	}
	defer expiryScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
