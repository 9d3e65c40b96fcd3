package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/segal-ziv/smartbill/internal/api/v1"
	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/rest/middleware"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Document *v1.DocumentHandler
	Supplier *v1.SupplierHandler
	Category *v1.CategoryHandler
	Settings *v1.SettingsHandler
	Sync     *v1.SyncHandler
	Export   *v1.ExportHandler
	Webhook  *v1.WebhookHandler
	Jobs     *v1.JobsHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// Webhook endpoints authenticate via token/signature, not via the
	// owner header.
	webhook := router.Group("/webhook")
	{
		webhook.GET("/whatsapp", handlers.Webhook.Verify)
		webhook.POST("/whatsapp", handlers.Webhook.Receive)
	}

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.OwnerMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	documents := router.Group("/documents")
	{
		documents.POST("/upload", handlers.Document.Upload)
		documents.GET("", handlers.Document.List)
		documents.GET("/:id", handlers.Document.Get)
		documents.PUT("/:id", handlers.Document.Update)
		documents.DELETE("/:id", handlers.Document.Delete)
		documents.GET("/:id/file", handlers.Document.GetFileURL)
		documents.POST("/:id/ocr", handlers.Document.RequeueOCR)
	}

	suppliers := router.Group("/suppliers")
	{
		suppliers.POST("", handlers.Supplier.Create)
		suppliers.GET("", handlers.Supplier.List)
		suppliers.GET("/:id", handlers.Supplier.Get)
		suppliers.PUT("/:id", handlers.Supplier.Update)
		suppliers.DELETE("/:id", handlers.Supplier.Delete)
	}

	categories := router.Group("/categories")
	{
		categories.POST("", handlers.Category.Create)
		categories.GET("", handlers.Category.List)
		categories.GET("/:id", handlers.Category.Get)
		categories.PUT("/:id", handlers.Category.Update)
		categories.DELETE("/:id", handlers.Category.Delete)
	}

	settings := router.Group("/settings")
	{
		settings.GET("", handlers.Settings.Get)
		settings.PUT("/profile", handlers.Settings.UpdateProfile)
		settings.GET("/gmail/auth", handlers.Settings.GmailAuthURL)
		settings.GET("/gmail/callback", handlers.Settings.GmailCallback)
		settings.PUT("/imap", handlers.Settings.ConfigureIMAP)
		settings.PUT("/whatsapp", handlers.Settings.ConnectWhatsApp)
		settings.DELETE("/integrations/:source", handlers.Settings.Disconnect)
	}

	sync := router.Group("/sync")
	{
		sync.POST("/:source", handlers.Sync.Trigger)
	}

	exports := router.Group("/exports")
	{
		exports.GET("", handlers.Export.Create)
		exports.POST("", handlers.Export.Schedule)
	}

	if handlers.Jobs != nil {
		jobs := router.Group("/jobs")
		{
			jobs.GET("/:queue", handlers.Jobs.History)
		}
	}
}
