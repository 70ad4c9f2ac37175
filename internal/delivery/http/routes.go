package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Cupcake005/sku-app/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestLoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.POST("", handler.CreateProduct)
			products.PUT("/:id", handler.UpdateProduct)
			products.DELETE("/:id", handler.DeleteProduct)
			products.GET("/sku/:sku", handler.GetProductBySKU)
			products.GET("/sku/:sku/next-variant", handler.NextVariantSKU)
		}

		v1.POST("/scan", handler.Scan)

		catalog := v1.Group("/catalog")
		{
			catalog.GET("/export", handler.ExportCatalog)
			catalog.POST("/import", handler.ImportCatalog)
		}

		exportList := v1.Group("/export-list")
		{
			exportList.GET("", handler.ListExportEntries)
			exportList.POST("", handler.AddExportEntry)
			exportList.DELETE("", handler.ClearExportList)
			exportList.DELETE("/entries/:entryId", handler.RemoveExportEntry)
			exportList.DELETE("/sku/:sku", handler.RemoveExportEntriesBySKU)
			exportList.GET("/export", handler.ExportExportList)
			exportList.GET("/scan-log", handler.ExportScanLog)
		}
	}

	return router
}
