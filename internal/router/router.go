package router

import (
	"github.com/gin-gonic/gin"
	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/internal/app/controller"
	"github.com/smartcart/smartcart-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	productController      *controller.ProductController
	categoryController     *controller.CategoryController
	cartController         *controller.CartController
	orderController        *controller.OrderController
	wishlistController     *controller.WishlistController
	reviewController       *controller.ReviewController
	notificationController *controller.NotificationController
	couponController       *controller.CouponController
	adminController        *controller.AdminController
	aiController           *controller.AIController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	wishlistController *controller.WishlistController,
	reviewController *controller.ReviewController,
	notificationController *controller.NotificationController,
	couponController *controller.CouponController,
	adminController *controller.AdminController,
	aiController *controller.AIController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		productController:      productController,
		categoryController:     categoryController,
		cartController:         cartController,
		orderController:        orderController,
		wishlistController:     wishlistController,
		reviewController:       reviewController,
		notificationController: notificationController,
		couponController:       couponController,
		adminController:        adminController,
		aiController:           aiController,
		uploadController:       uploadController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "SmartCart API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		v1.GET("/home", r.productController.GetHomeFeed)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/reviews", r.reviewController.ListReviews)
			products.POST("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.reviewController.SubmitReview,
			)
		}

		v1.GET("/categories", r.categoryController.ListCategories)

		v1.DELETE("/reviews/:id",
			r.authMiddleware.Authenticate(),
			r.reviewController.DeleteReview,
		)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.POST("/checkout", r.orderController.Checkout)
			orders.GET("", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/reorder", r.orderController.Reorder)
			orders.GET("/:id/invoice", r.orderController.DownloadInvoice)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(r.authMiddleware.Authenticate())
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddItem)
			wishlist.DELETE("/:product_id", r.wishlistController.RemoveItem)
			wishlist.POST("/:product_id/move-to-cart", r.wishlistController.MoveToCart)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.ListNotifications)
			notifications.GET("/unread-count", r.notificationController.UnreadCount)
			notifications.DELETE("/:id", r.notificationController.DeleteNotification)
		}

		v1.POST("/coupons/validate",
			r.authMiddleware.Authenticate(),
			r.couponController.ValidateCoupon,
		)

		ai := v1.Group("/ai")
		ai.Use(r.authMiddleware.Authenticate())
		{
			ai.POST("/chat", r.aiController.Chat)
			ai.POST("/interactions", r.aiController.CheckInteractions)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/dashboard", r.adminController.GetDashboard)

			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.POST("/categories", r.categoryController.CreateCategory)
			admin.PUT("/categories/:id", r.categoryController.UpdateCategory)
			admin.DELETE("/categories/:id", r.categoryController.DeleteCategory)

			admin.GET("/orders", r.orderController.ListOrders)
			admin.GET("/orders/map", r.orderController.DeliveryMap)
			admin.PUT("/orders/:id/status", r.orderController.UpdateStatus)

			admin.GET("/coupons", r.couponController.ListCoupons)
			admin.POST("/coupons", r.couponController.CreateCoupon)
			admin.PUT("/coupons/:id/toggle", r.couponController.ToggleCoupon)
			admin.DELETE("/coupons/:id", r.couponController.DeleteCoupon)

			admin.GET("/expiry-alerts", r.adminController.ListExpiryAlerts)
			admin.PUT("/expiry-alerts/:id", r.adminController.UpdateExpiryAlert)
			admin.POST("/expiry-alerts/scan", r.adminController.RunExpiryScan)

			admin.GET("/audit-logs", r.adminController.ListAuditLogs)

			admin.GET("/export/products", r.adminController.ExportProducts)
			admin.GET("/export/orders", r.adminController.ExportOrders)

			admin.POST("/upload/presigned-url", r.uploadController.PresignUpload)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
