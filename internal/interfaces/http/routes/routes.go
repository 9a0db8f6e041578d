// internal/interfaces/http/routes/routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/domain/cart"
	"github.com/sokohub/sokohub-backend/internal/domain/feedback"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
	"github.com/sokohub/sokohub-backend/internal/domain/product"
	"github.com/sokohub/sokohub-backend/internal/domain/report"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/handlers"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
	"github.com/sokohub/sokohub-backend/internal/pkg/auth"
	"github.com/sokohub/sokohub-backend/internal/pkg/pdf"
)

// SetupRoutes wires services, handlers, and middleware onto a gin engine
func SetupRoutes(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg))

	// Services
	userService := user.NewService(db, cfg)
	addressService := user.NewAddressService(db)
	productService := product.NewService(db)
	cartService := cart.NewService(db)
	orderService := order.NewService(db)
	paymentService := payment.NewService(db, redisClient, cfg, orderService, nil)
	feedbackService := feedback.NewService(db)
	reportService := report.NewService(db)
	pdfService := pdf.NewService(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	addressHandler := handlers.NewAddressHandler(addressService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, paymentService, userService, pdfService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	reportHandler := handlers.NewReportHandler(reportService)

	jwtManager := auth.NewJWTManager(cfg)
	authRequired := middleware.AuthMiddleware(jwtManager)
	adminRequired := middleware.AdminMiddleware()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	v1.GET("/products", productHandler.List)
	v1.GET("/products/:id", productHandler.Get)

	// Provider callback, authenticated by obscurity of checkout ids
	v1.POST("/payments/callback", paymentHandler.Callback)

	// Authenticated routes
	protected := v1.Group("")
	protected.Use(authRequired)
	{
		protected.GET("/profile", authHandler.Profile)
		protected.PUT("/profile", authHandler.UpdateProfile)
		protected.POST("/profile/password", authHandler.ChangePassword)

		protected.GET("/addresses", addressHandler.List)
		protected.POST("/addresses", addressHandler.Create)
		protected.PUT("/addresses/:id", addressHandler.Update)
		protected.DELETE("/addresses/:id", addressHandler.Delete)

		protected.GET("/cart", cartHandler.Get)
		protected.DELETE("/cart", cartHandler.Clear)
		protected.POST("/cart/items", cartHandler.AddItem)
		protected.PUT("/cart/items/:id", cartHandler.UpdateItem)
		protected.DELETE("/cart/items/:id", cartHandler.RemoveItem)

		protected.GET("/orders", orderHandler.List)
		protected.POST("/orders", orderHandler.Create)
		protected.GET("/orders/:id", orderHandler.Get)
		protected.POST("/orders/:id/cancel", orderHandler.Cancel)
		protected.GET("/orders/:id/receipt", orderHandler.Receipt)

		protected.POST("/payments/stkpush", paymentHandler.Initiate)
		protected.GET("/payments/order/:orderId", paymentHandler.Status)

		protected.GET("/feedback", feedbackHandler.List)
		protected.POST("/feedback", feedbackHandler.Create)
		protected.DELETE("/feedback/:id", feedbackHandler.Delete)
	}

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(authRequired, adminRequired)
	{
		admin.GET("/users", authHandler.ListUsers)
		admin.PUT("/users/:id/status", authHandler.SetUserActive)

		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)

		admin.GET("/orders", orderHandler.ListAll)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)

		admin.GET("/payments", paymentHandler.ListAll)
		admin.PUT("/payments/:id/approve", paymentHandler.Approve)

		admin.GET("/feedback", feedbackHandler.ListAll)
		admin.POST("/feedback/:id/respond", feedbackHandler.Respond)
		admin.PUT("/feedback/:id/approve", feedbackHandler.Approve)
		admin.DELETE("/feedback/:id", feedbackHandler.AdminDelete)

		admin.GET("/reports/summary", reportHandler.Summary)
		admin.GET("/reports/top-products", reportHandler.TopProducts)
		admin.GET("/reports/sales", reportHandler.SalesByDay)
	}

	return router
}
