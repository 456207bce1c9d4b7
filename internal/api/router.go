package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/api/handlers"
	"github.com/chiefcousin/toybox/internal/api/middleware"
	"github.com/chiefcousin/toybox/internal/config"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/metrics"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/internal/service"
)

const zohoWebhookPath = "/api/zoho/webhook"

// Services bundles the application services the handlers call
type Services struct {
	Catalog   *service.CatalogService
	Sync      *service.CatalogSyncService
	Orders    *service.OrderService
	Customers *service.CustomerService
	Staff     *service.StaffService
}

// Deps is everything NewRouter wires together
type Deps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Services Services
	Zoho     handlers.ZohoConnector
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(d Deps) *gin.Engine {
	cfg, logger := d.Config, d.Logger
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := cfg.IsProduction()

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "ToyBox API",
			"endpoints": []string{
				"GET /health",
				"GET /api/products",
				"GET /api/products/list",
				"GET /api/products/:slug",
				"POST /api/whatsapp-order",
				"POST /api/zoho/webhook",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	svc := d.Services
	staffAuth := middleware.StaffAuth(cfg.Auth.JWTSecret, logger)
	anyStaff := middleware.RequireRole(domain.StaffRoleAdmin, domain.StaffRoleStaff, domain.StaffRolePartner)
	adminOnly := middleware.RequireRole(domain.StaffRoleAdmin)

	api := router.Group("/api")
	{
		// Storefront
		api.GET("/products", handlers.HandleSearchProducts(svc.Catalog, logger))
		api.GET("/products/list", handlers.HandleListProducts(svc.Catalog, logger))
		api.GET("/products/:slug", handlers.HandleGetProduct(svc.Catalog, logger))
		api.POST("/track-view", handlers.HandleTrackView(svc.Catalog, logger))
		api.POST("/whatsapp-order",
			middleware.IdempotencyMiddleware(d.Repos.IdempotencyKey, logger),
			handlers.HandleWhatsAppOrder(svc.Orders, logger),
		)

		// Customer signup and profile
		customers := handlers.NewCustomerHandlers(svc.Customers, cfg.IsProduction(), logger)
		customerAuth := api.Group("/auth/customer")
		customerAuth.Use(middleware.RateLimit(1, 5))
		{
			customerAuth.POST("/send-otp", customers.SendOTP)
			customerAuth.POST("/verify-otp", customers.VerifyOTP)
			customerAuth.POST("/complete-signup", customers.CompleteSignup)
			customerAuth.POST("/register", customers.Register)
			customerAuth.GET("/profile", customers.GetProfile)
			customerAuth.PUT("/profile", customers.UpdateProfile)
		}

		// Zoho: the webhook authenticates with its own token, the OAuth callback with its state cookie
		router.POST(zohoWebhookPath, handlers.HandleZohoWebhook(d.Repos.Settings, svc.Sync, d.Metrics, logger))
		api.GET("/zoho/callback", handlers.HandleZohoCallback(d.Zoho, cfg.Store.SiteURL, logger))

		zohoRoutes := api.Group("/zoho")
		zohoRoutes.Use(staffAuth, adminOnly)
		{
			zohoRoutes.GET("/auth", handlers.HandleZohoAuth(d.Zoho, secure, logger))
			zohoRoutes.GET("/status", handlers.HandleZohoStatus(svc.Sync, d.Repos.Settings, cfg.Store.SiteURL, logger))
			zohoRoutes.POST("/sync", handlers.HandleZohoSync(d.Zoho, svc.Sync, logger))
			zohoRoutes.POST("/webhook-token", handlers.HandleRotateWebhookToken(d.Repos.Settings, cfg.Store.SiteURL, logger))
			zohoRoutes.POST("/disconnect", handlers.HandleZohoDisconnect(d.Zoho, logger))
		}

		// Staff: order handling is open to every role
		api.PATCH("/orders/:id", staffAuth, anyStaff, handlers.HandleUpdateOrder(svc.Orders, logger))

		api.POST("/admin/login", middleware.RateLimit(1, 5), handlers.HandleLogin(svc.Staff, secure, logger))
		api.POST("/admin/logout", handlers.HandleLogout(secure))

		staffRoutes := api.Group("/admin")
		staffRoutes.Use(staffAuth, anyStaff)
		{
			staffRoutes.GET("/dashboard", handlers.HandleDashboard(svc.Catalog, logger))
			staffRoutes.GET("/orders", handlers.HandleListOrders(svc.Orders, logger))
			staffRoutes.GET("/orders/:id", handlers.HandleGetOrder(svc.Orders, logger))
		}

		adminRoutes := api.Group("/admin")
		adminRoutes.Use(staffAuth, adminOnly)
		{
			adminRoutes.GET("/products", handlers.HandleAdminListProducts(svc.Catalog, logger))
			adminRoutes.POST("/products", handlers.HandleCreateProduct(svc.Catalog, logger))
			adminRoutes.PUT("/products/:id", handlers.HandleUpdateProduct(svc.Catalog, logger))
			adminRoutes.DELETE("/products/:id", handlers.HandleDeleteProduct(svc.Catalog, logger))

			adminRoutes.GET("/customers", handlers.HandleListCustomers(svc.Customers, logger))
			adminRoutes.POST("/customers", handlers.HandleAddCustomer(svc.Customers, logger))

			adminRoutes.GET("/staff", handlers.HandleListStaff(svc.Staff, logger))
			adminRoutes.POST("/staff", handlers.HandleCreateStaff(svc.Staff, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics.
// The Zoho webhook answers 200 even when its handler panics.
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		if c.Request.URL.Path == zohoWebhookPath {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"ok": false, "error": "internal error"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// loggingMiddleware logs HTTP requests. The webhook token is never logged.
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
