package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/handler"
	"invoicedesk/internal/middleware"
	"invoicedesk/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Invoice *handler.InvoiceHandler
	Draft   *handler.DraftHandler
	Health  *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h Handlers, corsCfg config.CORSConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(corsCfg))

	// Health checks and metrics
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/otp", h.Auth.RequestOTP)
	auth.POST("/verify", h.Auth.VerifyOTP)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/auth/session", h.Auth.Session)
	protected.GET("/categories", h.Invoice.Categories)

	// Invoice entry flow
	drafts := protected.Group("/drafts")
	drafts.POST("", h.Draft.Create)
	drafts.POST("/scan", h.Draft.Scan)
	drafts.POST("/text", h.Draft.FromText)
	drafts.GET("/:id", h.Draft.GetByID)
	drafts.PUT("/:id", h.Draft.Update)
	drafts.DELETE("/:id", h.Draft.Discard)
	drafts.POST("/:id/scan", h.Draft.Rescan)
	drafts.POST("/:id/commit", h.Draft.Commit)

	// Committed invoices and dashboard
	invoices := protected.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/export", h.Invoice.Export)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/draft", h.Draft.EditInvoice)

	return r
}
