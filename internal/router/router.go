package router

import (
	"github.com/gin-gonic/gin"

	"fieldos/internal/domain"
	"fieldos/internal/handler"
	"fieldos/internal/middleware"
	"fieldos/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	allowedOrigins []string,
	authH *handler.AuthHandler,
	tenantH *handler.TenantHandler,
	userH *handler.UserHandler,
	clientH *handler.ClientHandler,
	quoteH *handler.QuoteHandler,
	jobH *handler.JobHandler,
	invoiceH *handler.InvoiceHandler,
	reportH *handler.ReportHandler,
	portalH *handler.PortalHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Live)
	r.GET("/readyz", healthH.Ready)

	// Client portal - the opaque token in the path is the credential
	portal := r.Group("/portal")
	portal.GET("/quotes/:token", portalH.GetQuote)
	portal.POST("/quotes/:token/approve", portalH.ApproveQuote)
	portal.POST("/quotes/:token/decline", portalH.DeclineQuote)
	portal.GET("/invoices/:token", portalH.GetInvoice)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)

	// Protected routes - require valid JWT with tenant context
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.TenantGuard())

	// User management (tenant-scoped)
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Delete)

	// Clients and their properties
	clients := protected.Group("/clients")
	clients.POST("", clientH.Create)
	clients.GET("", clientH.List)
	clients.GET("/:id", clientH.GetByID)
	clients.PUT("/:id", clientH.Update)
	clients.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), clientH.Delete)
	clients.POST("/:id/properties", clientH.AddProperty)
	clients.GET("/:id/properties", clientH.ListProperties)

	// Quotes
	quotes := protected.Group("/quotes")
	quotes.POST("", quoteH.Create)
	quotes.GET("", quoteH.List)
	quotes.GET("/:id", quoteH.GetByID)
	quotes.PUT("/:id", quoteH.Update)
	quotes.POST("/:id/send", quoteH.Send)
	quotes.POST("/:id/approve", quoteH.Approve)
	quotes.POST("/:id/decline", quoteH.Decline)
	quotes.POST("/:id/archive", quoteH.Archive)
	quotes.POST("/:id/revert", quoteH.Revert)
	quotes.POST("/:id/convert", quoteH.Convert)
	quotes.POST("/:id/similar", quoteH.CreateSimilar)

	// Jobs, visits, attachments
	jobs := protected.Group("/jobs")
	jobs.POST("", jobH.Create)
	jobs.GET("", jobH.List)
	jobs.GET("/:id", jobH.GetByID)
	jobs.PUT("/:id", jobH.Update)
	jobs.POST("/:id/status", jobH.UpdateStatus)
	jobs.POST("/:id/visits", jobH.AddVisit)
	jobs.POST("/:id/visits/:visitId/complete", jobH.CompleteVisit)
	jobs.POST("/:id/invoice", invoiceH.CreateFromJob)
	jobs.POST("/:id/attachments", jobH.UploadAttachment)
	jobs.GET("/:id/attachments", jobH.ListAttachments)
	jobs.GET("/:id/attachments/:attachmentId/url", jobH.GetAttachmentURL)
	jobs.DELETE("/:id/attachments/:attachmentId", jobH.DeleteAttachment)

	// Invoices, payments, credit notes
	invoices := protected.Group("/invoices")
	invoices.POST("", invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.PUT("/:id", invoiceH.Update)
	invoices.POST("/:id/send", invoiceH.Send)
	invoices.POST("/:id/payments", invoiceH.RecordPayment)
	invoices.POST("/:id/credit-notes", invoiceH.IssueCreditNote)
	invoices.GET("/:id/balance", invoiceH.GetBalance)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/invoices.csv", reportH.ExportInvoicesCSV)
	reports.GET("/invoices.xlsx", reportH.ExportInvoicesXLSX)

	// Tenant settings (number series)
	settings := protected.Group("/settings")
	settings.GET("/sequences", tenantH.GetSequenceSettings)
	settings.PUT("/sequences", middleware.RequireRole(domain.RoleAdmin), tenantH.UpdateSequenceSettings)

	// Admin routes - tenant management
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc))
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/tenants", tenantH.Create)
	admin.GET("/tenants", tenantH.List)
	admin.GET("/tenants/:id", tenantH.GetByID)
	admin.PUT("/tenants/:id", tenantH.Update)
	admin.DELETE("/tenants/:id", tenantH.Delete)

	return r
}
