package server

import (
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/handler"
	"github.com/annaimjamhari/aircond-crm-app/internal/middleware"
	"github.com/annaimjamhari/aircond-crm-app/internal/session"
	"github.com/annaimjamhari/aircond-crm-app/pkg/config"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// New builds the Echo application with every route wired. Main and the
// tests share this so the routing table cannot drift between them.
func New(cfg *config.Config, db *gorm.DB, sessions *session.Store) *echo.Echo {
	cookies := session.NewCookieManager(cfg.Session.CookieSecure)
	sessionTTL := time.Duration(cfg.Session.ExpirationHours) * time.Hour

	authHandler := handler.NewAuthHandler(db, sessions, cookies, sessionTTL)
	pageHandler := handler.NewPageHandler(cfg.Server.StaticDir)
	customerHandler := handler.NewCustomerHandler(db)
	contactHandler := handler.NewContactHandler(db)
	opportunityHandler := handler.NewOpportunityHandler(db)
	activityHandler := handler.NewActivityHandler(db)
	userHandler := handler.NewUserHandler(db)
	dashboardHandler := handler.NewDashboardHandler(db)
	reportHandler := handler.NewReportHandler(db)
	settingsHandler := handler.NewSettingsHandler(db)
	systemHandler := handler.NewSystemHandler(db, &cfg.DB)

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(logger.GetLogger()))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	e.GET("/", pageHandler.Home)
	e.GET("/login", authHandler.LoginPage(cfg.Server.StaticDir))
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)

	// Page routes - no session sends the browser back to /login
	pages := e.Group("", middleware.PageAuth(sessions, cookies))
	for _, name := range []string{"dashboard", "customers", "contacts", "opportunities", "activities", "reports", "settings"} {
		pages.GET("/"+name, pageHandler.Serve(name))
	}

	// API routes - no session gets a 401, never a redirect
	api := e.Group("/api", middleware.APIAuth(sessions, cookies))

	customers := api.Group("/customers")
	customers.GET("", customerHandler.List)
	customers.POST("", customerHandler.Create)
	customers.GET("/:id", customerHandler.Get)
	customers.PUT("/:id", customerHandler.Update)
	customers.DELETE("/:id", customerHandler.Delete)

	contacts := api.Group("/contacts")
	contacts.GET("", contactHandler.List)
	contacts.POST("", contactHandler.Create)

	opportunities := api.Group("/opportunities")
	opportunities.GET("", opportunityHandler.List)
	opportunities.POST("", opportunityHandler.Create)

	activities := api.Group("/activities")
	activities.GET("", activityHandler.List)
	activities.POST("", activityHandler.Create)
	activities.GET("/:id", activityHandler.Get)
	activities.PUT("/:id", activityHandler.Update)
	activities.DELETE("/:id", activityHandler.Delete)

	users := api.Group("/users")
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.DELETE("/:id", userHandler.Delete)

	api.GET("/dashboard/stats", dashboardHandler.Stats)
	api.GET("/reports/sales-pipeline", reportHandler.SalesPipeline)
	api.GET("/reports/summary", reportHandler.Summary)

	settings := api.Group("/settings")
	settings.POST("/company", settingsHandler.SaveCompany)
	settings.GET("/company", settingsHandler.GetCompany)
	settings.POST("/preferences", settingsHandler.SavePreferences)
	settings.GET("/preferences", settingsHandler.GetPreferences)
	settings.POST("/change-password", authHandler.ChangePassword)

	system := api.Group("/system")
	system.GET("/db-size", systemHandler.DBSize)
	system.POST("/backup", systemHandler.Backup)
	system.POST("/clear-cache", systemHandler.ClearCache)
	system.GET("/diagnostics", systemHandler.Diagnostics)

	return e
}
